package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

type tierMasteryRow struct {
	LearnerID         string  `db:"learner_id"`
	DeckID            int64   `db:"deck_id"`
	BloomLevel        int     `db:"bloom_level"`
	CorrectnessEwma   float64 `db:"correctness_ewma"`
	RetentionStrength float64 `db:"retention_strength"`
	Coverage          float64 `db:"coverage"`
	MasteryPct        int     `db:"mastery_pct"`
	UpdatedAt         string  `db:"updated_at"`
}

// LoadTierMastery returns the persisted mastery row, or nil if the tier
// has never been computed.
func (s *Store) LoadTierMastery(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (*awa.TierMastery, error) {
	var row tierMasteryRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM tier_mastery
		WHERE learner_id = ? AND deck_id = ? AND bloom_level = ?`,
		learnerID, deckID, int(level))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tier mastery: %w", err)
	}
	return &awa.TierMastery{
		LearnerID:         row.LearnerID,
		DeckID:            row.DeckID,
		Level:             bloom.Level(row.BloomLevel),
		CorrectnessEwma:   row.CorrectnessEwma,
		RetentionStrength: row.RetentionStrength,
		Coverage:          row.Coverage,
		MasteryPct:        row.MasteryPct,
		UpdatedAt:         parseTime(row.UpdatedAt),
	}, nil
}

// UpsertTierMastery writes the persisted mastery row in one atomic
// statement, safe under concurrent recomputes for the same key.
func (s *Store) UpsertTierMastery(ctx context.Context, tm *awa.TierMastery) error {
	row := &tierMasteryRow{
		LearnerID:         tm.LearnerID,
		DeckID:            tm.DeckID,
		BloomLevel:        int(tm.Level),
		CorrectnessEwma:   tm.CorrectnessEwma,
		RetentionStrength: tm.RetentionStrength,
		Coverage:          tm.Coverage,
		MasteryPct:        tm.MasteryPct,
		UpdatedAt:         formatTime(tm.UpdatedAt),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO tier_mastery (
			learner_id, deck_id, bloom_level,
			correctness_ewma, retention_strength, coverage, mastery_pct, updated_at
		) VALUES (
			:learner_id, :deck_id, :bloom_level,
			:correctness_ewma, :retention_strength, :coverage, :mastery_pct, :updated_at
		)
		ON CONFLICT (learner_id, deck_id, bloom_level) DO UPDATE SET
			correctness_ewma   = excluded.correctness_ewma,
			retention_strength = excluded.retention_strength,
			coverage           = excluded.coverage,
			mastery_pct        = excluded.mastery_pct,
			updated_at         = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert tier mastery: %w", err)
	}
	return nil
}
