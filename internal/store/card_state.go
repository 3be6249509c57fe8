package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

// cardStateRow is the flat SQL shape of a mastery.CardState. Timestamps
// are RFC 3339 strings; the structured fields are JSON columns.
type cardStateRow struct {
	LearnerID      string  `db:"learner_id"`
	CardID         string  `db:"card_id"`
	DeckID         int64   `db:"deck_id"`
	BloomLevel     int     `db:"bloom_level"`
	Topic          string  `db:"topic"`
	Kind           string  `db:"kind"`
	Ease           float64 `db:"ease"`
	Repetitions    int     `db:"repetitions"`
	IntervalDays   int     `db:"interval_days"`
	DueAt          string  `db:"due_at"`
	Attempts       int     `db:"attempts"`
	Correct        float64 `db:"correct"`
	LastReview     string  `db:"last_review"`
	History        string  `db:"history"`
	Spacing        string  `db:"spacing"`
	Outcomes       string  `db:"outcomes"`
	ConfidenceEwma float64 `db:"confidence_ewma"`
	Retention      float64 `db:"retention"`
	Momentum       float64 `db:"momentum"`
	Confidence     float64 `db:"confidence"`
	Mastery        float64 `db:"mastery"`
	UpdatedAt      string  `db:"updated_at"`
}

func cardStateToRow(cs *mastery.CardState) (*cardStateRow, error) {
	history, err := json.Marshal(cs.Srs.History)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	spacing, err := json.Marshal(cs.Spacing)
	if err != nil {
		return nil, fmt.Errorf("marshal spacing: %w", err)
	}
	outcomes, err := json.Marshal(cs.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("marshal outcomes: %w", err)
	}
	return &cardStateRow{
		LearnerID:      cs.LearnerID,
		CardID:         cs.CardID,
		DeckID:         cs.DeckID,
		BloomLevel:     int(cs.Level),
		Topic:          cs.Topic,
		Kind:           cs.Kind,
		Ease:           cs.Srs.Ease,
		Repetitions:    cs.Srs.Repetitions,
		IntervalDays:   cs.Srs.IntervalDays,
		DueAt:          formatTime(cs.Srs.Due),
		Attempts:       cs.Srs.Attempts,
		Correct:        cs.Srs.Correct,
		LastReview:     formatTime(cs.Srs.LastReview),
		History:        string(history),
		Spacing:        string(spacing),
		Outcomes:       string(outcomes),
		ConfidenceEwma: cs.ConfidenceEwma,
		Retention:      cs.Retention,
		Momentum:       cs.Momentum,
		Confidence:     cs.Confidence,
		Mastery:        cs.Mastery,
		UpdatedAt:      formatTime(cs.UpdatedAt),
	}, nil
}

func rowToCardState(row *cardStateRow) (*mastery.CardState, error) {
	cs := &mastery.CardState{
		LearnerID: row.LearnerID,
		CardID:    row.CardID,
		DeckID:    row.DeckID,
		Level:     bloom.Level(row.BloomLevel),
		Topic:     row.Topic,
		Kind:      row.Kind,
		Srs: srs.State{
			Ease:         row.Ease,
			Repetitions:  row.Repetitions,
			IntervalDays: row.IntervalDays,
			Due:          parseTime(row.DueAt),
			Attempts:     row.Attempts,
			Correct:      row.Correct,
			LastReview:   parseTime(row.LastReview),
		},
		ConfidenceEwma: row.ConfidenceEwma,
		Retention:      row.Retention,
		Momentum:       row.Momentum,
		Confidence:     row.Confidence,
		Mastery:        row.Mastery,
		UpdatedAt:      parseTime(row.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(row.History), &cs.Srs.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Spacing), &cs.Spacing); err != nil {
		return nil, fmt.Errorf("unmarshal spacing: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Outcomes), &cs.Outcomes); err != nil {
		return nil, fmt.Errorf("unmarshal outcomes: %w", err)
	}
	return cs, nil
}

// LoadCardState returns a learner's card record, or nil if the card has
// never been answered.
func (s *Store) LoadCardState(ctx context.Context, learnerID, cardID string) (*mastery.CardState, error) {
	var row cardStateRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM card_state WHERE learner_id = ? AND card_id = ?`, learnerID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load card state: %w", err)
	}
	return rowToCardState(&row)
}

// SaveCardState writes a card record as a single atomic upsert.
func (s *Store) SaveCardState(ctx context.Context, cs *mastery.CardState) error {
	row, err := cardStateToRow(cs)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO card_state (
			learner_id, card_id, deck_id, bloom_level, topic, kind,
			ease, repetitions, interval_days, due_at, attempts, correct, last_review,
			history, spacing, outcomes, confidence_ewma,
			retention, momentum, confidence, mastery, updated_at
		) VALUES (
			:learner_id, :card_id, :deck_id, :bloom_level, :topic, :kind,
			:ease, :repetitions, :interval_days, :due_at, :attempts, :correct, :last_review,
			:history, :spacing, :outcomes, :confidence_ewma,
			:retention, :momentum, :confidence, :mastery, :updated_at
		)
		ON CONFLICT (learner_id, card_id) DO UPDATE SET
			deck_id = excluded.deck_id, bloom_level = excluded.bloom_level,
			topic = excluded.topic, kind = excluded.kind,
			ease = excluded.ease, repetitions = excluded.repetitions,
			interval_days = excluded.interval_days, due_at = excluded.due_at,
			attempts = excluded.attempts, correct = excluded.correct,
			last_review = excluded.last_review, history = excluded.history,
			spacing = excluded.spacing, outcomes = excluded.outcomes,
			confidence_ewma = excluded.confidence_ewma, retention = excluded.retention,
			momentum = excluded.momentum, confidence = excluded.confidence,
			mastery = excluded.mastery, updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("save card state: %w", err)
	}
	return nil
}

// ListCardStates returns all of a learner's card records for one deck.
func (s *Store) ListCardStates(ctx context.Context, learnerID string, deckID int64) ([]*mastery.CardState, error) {
	var rows []cardStateRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM card_state WHERE learner_id = ? AND deck_id = ? ORDER BY card_id`, learnerID, deckID)
	if err != nil {
		return nil, fmt.Errorf("list card states: %w", err)
	}

	out := make([]*mastery.CardState, 0, len(rows))
	for i := range rows {
		cs, err := rowToCardState(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// LoadSrsCounts returns lifetime attempt/correct tallies for the given
// cards. Cards without a state row are omitted.
func (s *Store) LoadSrsCounts(ctx context.Context, learnerID string, deckID int64, cardIDs []string) ([]awa.SrsCount, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT card_id, attempts, correct FROM card_state
		WHERE learner_id = ? AND deck_id = ? AND card_id IN (?)
		ORDER BY card_id`, learnerID, deckID, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("build srs count query: %w", err)
	}

	rows := []struct {
		CardID   string  `db:"card_id"`
		Attempts int     `db:"attempts"`
		Correct  float64 `db:"correct"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load srs counts: %w", err)
	}

	counts := make([]awa.SrsCount, len(rows))
	for i, r := range rows {
		counts[i] = awa.SrsCount{CardID: r.CardID, Attempts: r.Attempts, Correct: r.Correct}
	}
	return counts, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
