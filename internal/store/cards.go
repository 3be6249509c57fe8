package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

// SeedCards upserts deck card references. Content authoring lives outside
// the engine; this is the narrow channel it loads through.
func (s *Store) SeedCards(ctx context.Context, refs []CardRef) error {
	for _, ref := range refs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO card (card_id, deck_id, bloom_level, topic, kind)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (deck_id, card_id) DO UPDATE SET
				bloom_level = excluded.bloom_level,
				topic       = excluded.topic,
				kind        = excluded.kind`,
			ref.CardID, ref.DeckID, int(ref.Level), ref.Topic, ref.Kind)
		if err != nil {
			return fmt.Errorf("seed card %s: %w", ref.CardID, err)
		}
	}
	return nil
}

// FindCard returns a card reference, or nil if the card is unknown.
func (s *Store) FindCard(ctx context.Context, cardID string) (*CardRef, error) {
	var ref CardRef
	err := s.db.GetContext(ctx, &ref,
		`SELECT card_id, deck_id, bloom_level, topic, kind FROM card WHERE card_id = ?`, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find card: %w", err)
	}
	return &ref, nil
}

// ListCardsForTier returns the deck's cards at one tier.
func (s *Store) ListCardsForTier(ctx context.Context, deckID int64, level bloom.Level) ([]CardRef, error) {
	var refs []CardRef
	err := s.db.SelectContext(ctx, &refs, `
		SELECT card_id, deck_id, bloom_level, topic, kind FROM card
		WHERE deck_id = ? AND bloom_level = ?
		ORDER BY card_id`, deckID, int(level))
	if err != nil {
		return nil, fmt.Errorf("list cards for tier: %w", err)
	}
	return refs, nil
}

// CountCardsByTier returns per-tier card counts for a deck.
func (s *Store) CountCardsByTier(ctx context.Context, deckID int64) (map[bloom.Level]int, error) {
	rows := []struct {
		Level int `db:"bloom_level"`
		N     int `db:"n"`
	}{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT bloom_level, COUNT(*) AS n FROM card
		WHERE deck_id = ? GROUP BY bloom_level`, deckID)
	if err != nil {
		return nil, fmt.Errorf("count cards by tier: %w", err)
	}

	counts := make(map[bloom.Level]int, len(rows))
	for _, r := range rows {
		counts[bloom.Level(r.Level)] = r.N
	}
	return counts, nil
}
