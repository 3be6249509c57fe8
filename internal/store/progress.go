package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/mission"
)

// LoadQuestProgress returns the per-tier progress map, or nil if the
// learner has never touched the deck.
func (s *Store) LoadQuestProgress(ctx context.Context, learnerID string, deckID int64) (mission.Progress, error) {
	var tiers string
	err := s.db.GetContext(ctx, &tiers,
		`SELECT tiers FROM quest_progress WHERE learner_id = ? AND deck_id = ?`, learnerID, deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load quest progress: %w", err)
	}

	var p mission.Progress
	if err := json.Unmarshal([]byte(tiers), &p); err != nil {
		return nil, fmt.Errorf("unmarshal quest progress: %w", err)
	}
	return p, nil
}

// UpsertQuestProgress writes the whole progress map atomically.
func (s *Store) UpsertQuestProgress(ctx context.Context, learnerID string, deckID int64, p mission.Progress) error {
	tiers, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal quest progress: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quest_progress (learner_id, deck_id, tiers, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, deck_id) DO UPDATE SET
			tiers      = excluded.tiers,
			updated_at = excluded.updated_at`,
		learnerID, deckID, string(tiers), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert quest progress: %w", err)
	}
	return nil
}

// ResetDeck deletes all missions, card states, tier mastery, and progress
// for a learner×deck. Deck content (the card table) is untouched.
func (s *Store) ResetDeck(ctx context.Context, learnerID string, deckID int64) error {
	stmts := []string{
		`DELETE FROM mission_attempt WHERE learner_id = ? AND deck_id = ?`,
		`DELETE FROM card_state WHERE learner_id = ? AND deck_id = ?`,
		`DELETE FROM tier_mastery WHERE learner_id = ? AND deck_id = ?`,
		`DELETE FROM quest_progress WHERE learner_id = ? AND deck_id = ?`,
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, learnerID, deckID); err != nil {
			tx.Rollback()
			return fmt.Errorf("reset deck: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
