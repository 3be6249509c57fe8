package engine

import (
	"context"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

// RecordAnswer applies one review answer to a learner's card record and
// persists the updated signals. A first answer creates the record.
func (s *Service) RecordAnswer(ctx context.Context, learnerID, cardID string, o srs.Outcome) (*mastery.CardState, error) {
	if learnerID == "" {
		return nil, &NotAuthenticatedError{}
	}
	if cardID == "" {
		return nil, &mission.ValidationError{Field: "cardId", Msg: "must not be empty"}
	}

	ref, err := s.repo.FindCard(ctx, cardID)
	if err != nil {
		return nil, &PersistenceError{Op: "find card", Err: err}
	}
	if ref == nil {
		return nil, &mission.ValidationError{Field: "cardId", Msg: "unknown card"}
	}

	cs, err := s.repo.LoadCardState(ctx, learnerID, cardID)
	if err != nil {
		return nil, &PersistenceError{Op: "load card state", Err: err}
	}
	if cs == nil {
		cs = mastery.NewCardState(learnerID, cardID, ref.DeckID, ref.Level, ref.Topic, ref.Kind)
	}

	mastery.Apply(cs, o, s.now(), bloom.ConfigFor(cs.Level))

	if err := s.repo.SaveCardState(ctx, cs); err != nil {
		return nil, &PersistenceError{Op: "save card state", Err: err}
	}
	return cs, nil
}
