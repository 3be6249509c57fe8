package engine

import (
	"context"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

// TierMastery returns the persisted mastery row for a learner×deck×tier,
// computing and persisting it when none exists yet.
func (s *Service) TierMastery(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (*awa.TierMastery, error) {
	if learnerID == "" {
		return nil, &NotAuthenticatedError{}
	}
	tm, err := s.repo.LoadTierMastery(ctx, learnerID, deckID, level)
	if err != nil {
		return nil, &PersistenceError{Op: "load tier mastery", Err: err}
	}
	if tm != nil {
		return tm, nil
	}
	if err := s.recomputeTier(ctx, learnerID, deckID, level, -1); err != nil {
		return nil, err
	}
	tm, err = s.repo.LoadTierMastery(ctx, learnerID, deckID, level)
	if err != nil {
		return nil, &PersistenceError{Op: "load tier mastery", Err: err}
	}
	return tm, nil
}

// recomputeTier rebuilds one tier's persisted mastery row from the mission
// history window and the per-card scheduler tallies, then writes it back
// as a single upsert. latestScorePct is negative when the recompute was
// not triggered by a mission.
func (s *Service) recomputeTier(ctx context.Context, learnerID string, deckID int64, level bloom.Level, latestScorePct float64) error {
	now := s.now()

	refs, err := s.repo.ListCardsForTier(ctx, deckID, level)
	if err != nil {
		return &PersistenceError{Op: "list tier cards", Err: err}
	}
	cardIDs := make([]string, len(refs))
	for i, ref := range refs {
		cardIDs[i] = ref.CardID
	}

	since := now.AddDate(0, 0, -awa.HistoryWindowDays)
	attempts, err := s.repo.LoadRecentAttempts(ctx, learnerID, deckID, level, since)
	if err != nil {
		return &PersistenceError{Op: "load recent attempts", Err: err}
	}

	var counts []awa.SrsCount
	if len(cardIDs) > 0 {
		counts, err = s.repo.LoadSrsCounts(ctx, learnerID, deckID, cardIDs)
		if err != nil {
			return &PersistenceError{Op: "load srs counts", Err: err}
		}
	}

	prev, err := s.repo.LoadTierMastery(ctx, learnerID, deckID, level)
	if err != nil {
		return &PersistenceError{Op: "load tier mastery", Err: err}
	}

	tm := awa.Compute(awa.Input{
		LearnerID:      learnerID,
		DeckID:         deckID,
		Level:          level,
		Attempts:       attempts,
		SrsCounts:      counts,
		TotalTierCards: len(refs),
		Prev:           prev,
		LatestScorePct: latestScorePct,
	}, now)

	if err := s.repo.UpsertTierMastery(ctx, &tm); err != nil {
		return &PersistenceError{Op: "upsert tier mastery", Err: err}
	}
	return nil
}

// Graduation runs the graduation gate over one tier's studied cards. It is
// diagnostic only; tier unlocking stays with the mission rules.
func (s *Service) Graduation(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (bloom.GraduationResult, error) {
	if learnerID == "" {
		return bloom.GraduationResult{}, &NotAuthenticatedError{}
	}
	records, err := s.repo.ListCardStates(ctx, learnerID, deckID)
	if err != nil {
		return bloom.GraduationResult{}, &PersistenceError{Op: "list card states", Err: err}
	}
	var evidence []bloom.CardEvidence
	for _, cs := range records {
		if cs.Level != level {
			continue
		}
		evidence = append(evidence, bloom.CardEvidence{
			Mastery:  cs.Mastery,
			ShortGap: cs.Spacing.ShortGap,
			LongGap:  cs.Spacing.LongGap,
			Kind:     cs.Kind,
		})
	}
	return s.graduation.Evaluate(level, evidence), nil
}
