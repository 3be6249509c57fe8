package awa

import (
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
)

// Input gathers everything needed to recompute one tier's persisted
// mastery row. Attempts should already be limited to the history window.
type Input struct {
	LearnerID      string
	DeckID         int64
	Level          bloom.Level
	Attempts       []mission.Attempt
	SrsCounts      []SrsCount
	TotalTierCards int

	// Prev is the existing persisted row, nil on first computation.
	Prev *TierMastery

	// LatestScorePct is the raw score of the mission that triggered the
	// recompute; negative when the recompute was not mission-triggered.
	LatestScorePct float64
}

// Compute derives the full persisted tier mastery row. It is pure: the
// caller persists the result with a single atomic upsert.
func Compute(in Input, now time.Time) TierMastery {
	sessions := BundleSessions(in.Attempts, in.Level)
	accuracy := Accuracy(sessions, in.TotalTierCards, now)
	retention := RetentionStrength(in.SrsCounts)

	tm := TierMastery{
		LearnerID:         in.LearnerID,
		DeckID:            in.DeckID,
		Level:             in.Level,
		RetentionStrength: retention,
		MasteryPct:        BlendedPct(retention, accuracy),
		UpdatedAt:         now,
	}

	// Coverage persists the best-covered recent session for display.
	for _, s := range sessions {
		if cov := s.Coverage(in.TotalTierCards); cov > tm.Coverage {
			tm.Coverage = cov
		}
	}

	switch {
	case in.LatestScorePct >= 0:
		prevEwma := 0.0
		hasPrev := false
		if in.Prev != nil {
			prevEwma = in.Prev.CorrectnessEwma
			hasPrev = true
		}
		tm.CorrectnessEwma = SmoothedScore(prevEwma, in.LatestScorePct, hasPrev)
	case in.Prev != nil:
		tm.CorrectnessEwma = in.Prev.CorrectnessEwma
	}

	return tm
}
