package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
)

type attemptRow struct {
	ID           string  `db:"id"`
	LearnerID    string  `db:"learner_id"`
	DeckID       int64   `db:"deck_id"`
	BloomLevel   int     `db:"bloom_level"`
	Sequence     int     `db:"sequence"`
	Seed         int64   `db:"seed"`
	CardIDs      string  `db:"card_ids"`
	AnsweredIDs  string  `db:"answered_ids"`
	CardsSeen    int     `db:"cards_seen"`
	CardsCorrect float64 `db:"cards_correct"`
	ScorePct     float64 `db:"score_pct"`
	Mode         string  `db:"mode"`
	StartedAt    string  `db:"started_at"`
	EndedAt      string  `db:"ended_at"`
	Breakdown    string  `db:"breakdown"`
}

func attemptToRow(a *mission.Attempt) (*attemptRow, error) {
	cardIDs, err := json.Marshal(a.CardIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal card ids: %w", err)
	}
	answered, err := json.Marshal(a.AnsweredIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal answered ids: %w", err)
	}
	breakdown, err := json.Marshal(a.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}
	return &attemptRow{
		ID:           a.ID,
		LearnerID:    a.LearnerID,
		DeckID:       a.DeckID,
		BloomLevel:   int(a.Level),
		Sequence:     a.Sequence,
		Seed:         a.Seed,
		CardIDs:      string(cardIDs),
		AnsweredIDs:  string(answered),
		CardsSeen:    a.CardsSeen,
		CardsCorrect: a.CardsCorrect,
		ScorePct:     a.ScorePct,
		Mode:         string(a.Mode),
		StartedAt:    formatTime(a.StartedAt),
		EndedAt:      formatTime(a.EndedAt),
		Breakdown:    string(breakdown),
	}, nil
}

func rowToAttempt(row *attemptRow) (mission.Attempt, error) {
	a := mission.Attempt{
		ID:           row.ID,
		LearnerID:    row.LearnerID,
		DeckID:       row.DeckID,
		Level:        bloom.Level(row.BloomLevel),
		Sequence:     row.Sequence,
		Seed:         row.Seed,
		CardsSeen:    row.CardsSeen,
		CardsCorrect: row.CardsCorrect,
		ScorePct:     row.ScorePct,
		Mode:         mission.Mode(row.Mode),
		StartedAt:    parseTime(row.StartedAt),
		EndedAt:      parseTime(row.EndedAt),
	}
	if err := json.Unmarshal([]byte(row.CardIDs), &a.CardIDs); err != nil {
		return a, fmt.Errorf("unmarshal card ids: %w", err)
	}
	if err := json.Unmarshal([]byte(row.AnsweredIDs), &a.AnsweredIDs); err != nil {
		return a, fmt.Errorf("unmarshal answered ids: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Breakdown), &a.Breakdown); err != nil {
		return a, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return a, nil
}

// AppendAttempt records a completed mission. Attempts are immutable once
// written.
func (s *Store) AppendAttempt(ctx context.Context, a *mission.Attempt) error {
	row, err := attemptToRow(a)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO mission_attempt (
			id, learner_id, deck_id, bloom_level, sequence, seed,
			card_ids, answered_ids, cards_seen, cards_correct, score_pct,
			mode, started_at, ended_at, breakdown
		) VALUES (
			:id, :learner_id, :deck_id, :bloom_level, :sequence, :seed,
			:card_ids, :answered_ids, :cards_seen, :cards_correct, :score_pct,
			:mode, :started_at, :ended_at, :breakdown
		)`, row)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

// LoadRecentAttempts returns a tier's attempts that ended at or after
// since, oldest first.
func (s *Store) LoadRecentAttempts(ctx context.Context, learnerID string, deckID int64, level bloom.Level, since time.Time) ([]mission.Attempt, error) {
	var rows []attemptRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM mission_attempt
		WHERE learner_id = ? AND deck_id = ? AND bloom_level = ? AND ended_at >= ?
		ORDER BY ended_at`, learnerID, deckID, int(level), formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("load recent attempts: %w", err)
	}

	out := make([]mission.Attempt, 0, len(rows))
	for i := range rows {
		a, err := rowToAttempt(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// BestScore returns the best historical mission score for a tier, 0 when
// the tier has no attempts.
func (s *Store) BestScore(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (float64, error) {
	var best float64
	err := s.db.GetContext(ctx, &best, `
		SELECT COALESCE(MAX(score_pct), 0) FROM mission_attempt
		WHERE learner_id = ? AND deck_id = ? AND bloom_level = ?`,
		learnerID, deckID, int(level))
	if err != nil {
		return 0, fmt.Errorf("best score: %w", err)
	}
	return best, nil
}
