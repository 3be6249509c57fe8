package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/stats"
	"github.com/bloomdeck/bloomdeck/internal/store"
	"github.com/bloomdeck/bloomdeck/internal/xp"
)

// rewardWindow is the trailing span in which a finalize with an identical
// payload is treated as a duplicate and not re-minted.
const rewardWindow = 15 * time.Minute

// auditKindReward marks audit events written when mission XP is credited.
const auditKindReward = "mission_reward"

// MissionResult is the learner-facing outcome of a completed mission.
type MissionResult struct {
	Passed   bool
	ScorePct float64

	// UnlockedNextTier is true only when this mission flipped the next
	// tier from locked to unlocked.
	UnlockedNextTier bool
	NextTier         bloom.Level
	UnlockReason     string

	Progress mission.Progress

	// XPAwarded is zero when the finalize was a duplicate.
	XPAwarded     int
	RewardSkipped bool
}

// CompleteMission records a finished mission, advances quest progress,
// mints the XP reward once per payload, and kicks the best-effort tier
// mastery recompute. The attempt append and the progress upsert are the
// primary write path; recompute failures are logged and swallowed.
func (s *Service) CompleteMission(ctx context.Context, a *mission.Attempt) (*MissionResult, error) {
	if a == nil || a.LearnerID == "" {
		return nil, &NotAuthenticatedError{}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.EndedAt.IsZero() {
		a.EndedAt = now
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = a.EndedAt
	}
	scorePct, passed := mission.Score(a.CardsCorrect, a.CardsSeen)
	a.ScorePct = scorePct

	prog, err := s.loadOrSeedProgress(ctx, a.LearnerID, a.DeckID)
	if err != nil {
		return nil, err
	}

	res := &MissionResult{Passed: passed, ScorePct: a.ScorePct}

	// Snapshot the next tier's lock state before this mission counts
	// anywhere, including the stored best score.
	next, hasNext := a.Level.Next()
	unlockedBefore := false
	bestPrev := 0.0
	if hasNext {
		bestPrev, err = s.repo.BestScore(ctx, a.LearnerID, a.DeckID, a.Level)
		if err != nil {
			return nil, &PersistenceError{Op: "best score", Err: err}
		}
		unlockedBefore, _ = mission.Unlocked(next, prog, bestPrev, s.rules)
	}

	if err := s.repo.AppendAttempt(ctx, a); err != nil {
		return nil, &PersistenceError{Op: "append attempt", Err: err}
	}

	prog.RecordAttempt(a.Level, passed)
	if err := s.repo.UpsertQuestProgress(ctx, a.LearnerID, a.DeckID, prog); err != nil {
		return nil, &PersistenceError{Op: "upsert quest progress", Err: err}
	}
	res.Progress = prog

	if hasNext {
		if a.ScorePct > bestPrev {
			bestPrev = a.ScorePct
		}
		unlockedAfter, reason := mission.Unlocked(next, prog, bestPrev, s.rules)
		if unlockedAfter && !unlockedBefore {
			res.UnlockedNextTier = true
			res.NextTier = next
			res.UnlockReason = reason
		}
	}

	if err := s.finalizeReward(ctx, a, now, res); err != nil {
		return nil, err
	}

	// Best-effort: a stale mastery number is better than a failed mission.
	if err := s.recomputeTier(ctx, a.LearnerID, a.DeckID, a.Level, a.ScorePct); err != nil {
		s.log.Warn("tier mastery recompute failed",
			"learner", a.LearnerID, "deck", a.DeckID, "tier", a.Level.String(), "error", err)
	} else if err := s.flagMastered(ctx, a.LearnerID, a.DeckID, a.Level, prog); err != nil {
		s.log.Warn("mastered flag update failed",
			"learner", a.LearnerID, "deck", a.DeckID, "tier", a.Level.String(), "error", err)
	}

	return res, nil
}

// flagMastered flips a tier's mastered flag once its persisted mastery
// crosses the threshold. The flag is monotonic; it never flips back.
func (s *Service) flagMastered(ctx context.Context, learnerID string, deckID int64, level bloom.Level, prog mission.Progress) error {
	tp := prog[level]
	if tp.Mastered {
		return nil
	}
	tm, err := s.repo.LoadTierMastery(ctx, learnerID, deckID, level)
	if err != nil {
		return err
	}
	if tm == nil || float64(tm.MasteryPct) < stats.MasteredThreshold*100 {
		return nil
	}
	tp.Mastered = true
	prog[level] = tp
	return s.repo.UpsertQuestProgress(ctx, learnerID, deckID, prog)
}

// finalizeReward credits mission XP at most once per payload: a reward
// event with the same deck, mode, and correct/total inside the trailing
// window marks this finalize a duplicate.
func (s *Service) finalizeReward(ctx context.Context, a *mission.Attempt, now time.Time, res *MissionResult) error {
	events, err := s.repo.QueryRecentAuditEvents(ctx, a.LearnerID, a.DeckID, auditKindReward, now.Add(-rewardWindow))
	if err != nil {
		return &PersistenceError{Op: "query audit events", Err: err}
	}
	for _, ev := range events {
		if ev.Payload["mode"] == string(a.Mode) &&
			ev.Payload["correct"] == a.CardsCorrect &&
			ev.Payload["seen"] == float64(a.CardsSeen) {
			res.RewardSkipped = true
			return nil
		}
	}

	correctByLevel := map[bloom.Level]float64{a.Level: a.CardsCorrect}
	if len(a.Breakdown) > 0 {
		correctByLevel = make(map[bloom.Level]float64, len(a.Breakdown))
		for level, tc := range a.Breakdown {
			correctByLevel[level] = tc.Correct
		}
	}
	res.XPAwarded = xp.MissionAward(correctByLevel)

	ev := &store.AuditEvent{
		Kind:      auditKindReward,
		LearnerID: a.LearnerID,
		DeckID:    a.DeckID,
		Payload: map[string]any{
			"attempt_id": a.ID,
			"mode":       string(a.Mode),
			"correct":    a.CardsCorrect,
			"seen":       float64(a.CardsSeen),
			"xp":         float64(res.XPAwarded),
		},
		CreatedAt: now,
	}
	if err := s.repo.AppendAuditEvent(ctx, ev); err != nil {
		return &PersistenceError{Op: "append audit event", Err: err}
	}
	return nil
}

func (s *Service) loadOrSeedProgress(ctx context.Context, learnerID string, deckID int64) (mission.Progress, error) {
	prog, err := s.repo.LoadQuestProgress(ctx, learnerID, deckID)
	if err != nil {
		return nil, &PersistenceError{Op: "load quest progress", Err: err}
	}
	if prog != nil {
		return prog, nil
	}
	counts, err := s.repo.CountCardsByTier(ctx, deckID)
	if err != nil {
		return nil, &PersistenceError{Op: "count cards", Err: err}
	}
	return mission.SeedProgress(counts), nil
}
