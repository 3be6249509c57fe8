package engine

import (
	"context"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/stats"
)

// ResetDeck wipes a learner's mission history, card states, and progress
// for one deck, then re-seeds zeroed quest counters from the current card
// counts. Deck content itself is untouched.
func (s *Service) ResetDeck(ctx context.Context, learnerID string, deckID int64) error {
	if learnerID == "" {
		return &NotAuthenticatedError{}
	}
	if err := s.repo.ResetDeck(ctx, learnerID, deckID); err != nil {
		return &PersistenceError{Op: "reset deck", Err: err}
	}
	counts, err := s.repo.CountCardsByTier(ctx, deckID)
	if err != nil {
		return &PersistenceError{Op: "count cards", Err: err}
	}
	prog := mission.SeedProgress(counts)
	if err := s.repo.UpsertQuestProgress(ctx, learnerID, deckID, prog); err != nil {
		return &PersistenceError{Op: "upsert quest progress", Err: err}
	}
	return nil
}

// ContentChanged re-totals quest progress after deck content changed and
// refreshes every tier's persisted mastery. The re-total is the primary
// write; per-tier recomputes are best-effort and fail independently.
func (s *Service) ContentChanged(ctx context.Context, learnerID string, deckID int64) error {
	if learnerID == "" {
		return &NotAuthenticatedError{}
	}
	counts, err := s.repo.CountCardsByTier(ctx, deckID)
	if err != nil {
		return &PersistenceError{Op: "count cards", Err: err}
	}

	prog, err := s.loadOrSeedProgress(ctx, learnerID, deckID)
	if err != nil {
		return err
	}
	if prog.Retotal(counts) {
		if err := s.repo.UpsertQuestProgress(ctx, learnerID, deckID, prog); err != nil {
			return &PersistenceError{Op: "upsert quest progress", Err: err}
		}
	}

	for _, level := range bloom.AllLevels() {
		if err := s.recomputeTier(ctx, learnerID, deckID, level, -1); err != nil {
			s.log.Warn("tier mastery recompute failed",
				"learner", learnerID, "deck", deckID, "tier", level.String(), "error", err)
		}
	}
	return nil
}

// DeckOverview summarizes a learner's standing across one deck's cards.
func (s *Service) DeckOverview(ctx context.Context, learnerID string, deckID int64) (stats.DeckOverview, []*mastery.CardState, error) {
	if learnerID == "" {
		return stats.DeckOverview{}, nil, &NotAuthenticatedError{}
	}
	records, err := s.repo.ListCardStates(ctx, learnerID, deckID)
	if err != nil {
		return stats.DeckOverview{}, nil, &PersistenceError{Op: "list card states", Err: err}
	}
	return stats.Overview(records, s.now()), records, nil
}
