package engine

import (
	"context"

	"github.com/bloomdeck/bloomdeck/internal/queue"
)

// BuildReviewQueue returns the ordered card ids a learner should study
// next for a deck, interleaved across topics so no single topic dominates
// a stretch of the queue.
func (s *Service) BuildReviewQueue(ctx context.Context, learnerID string, deckID int64, mode queue.Mode) ([]string, error) {
	if learnerID == "" {
		return nil, &NotAuthenticatedError{}
	}
	records, err := s.repo.ListCardStates(ctx, learnerID, deckID)
	if err != nil {
		return nil, &PersistenceError{Op: "list card states", Err: err}
	}

	switch mode {
	case queue.ModeStruggle:
		records = queue.Struggling(records)
	default:
		records = queue.Due(records, s.now())
	}
	records = queue.Interleave(records, s.classify)

	ids := make([]string, len(records))
	for i, cs := range records {
		ids[i] = cs.CardID
	}
	return ids, nil
}
