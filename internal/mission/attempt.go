package mission

import (
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

// Mode is a study mode for a mission.
type Mode string

const (
	ModeLearn  Mode = "learn"
	ModeQuiz   Mode = "quiz"
	ModeReview Mode = "review"
	ModeBoss   Mode = "boss"
)

// DefaultMode is assumed when an attempt arrives with an unknown mode.
const DefaultMode = ModeQuiz

// KnownModes lists the enumerated study modes.
func KnownModes() []Mode {
	return []Mode{ModeLearn, ModeQuiz, ModeReview, ModeBoss}
}

// NormalizeMode maps arbitrary input to a known mode.
func NormalizeMode(s string) Mode {
	for _, m := range KnownModes() {
		if string(m) == s {
			return m
		}
	}
	return DefaultMode
}

// TierCount is the per-tier slice of a mission's answers.
type TierCount struct {
	Seen    int     `json:"seen"`
	Correct float64 `json:"correct"`
}

// Attempt is one completed study mission. Attempts are append-only: once
// written they form the audit trail for idempotency and for the
// attempt-weighted accuracy model.
type Attempt struct {
	ID        string
	LearnerID string
	DeckID    int64
	Level     bloom.Level
	Sequence  int
	Seed      int64

	CardIDs     []string
	AnsweredIDs []string

	CardsSeen    int
	CardsCorrect float64 // fractional for partial-credit card types
	ScorePct     float64
	Mode         Mode

	StartedAt time.Time
	EndedAt   time.Time

	// Breakdown carries per-tier sub-counts when a mission spans tiers.
	Breakdown map[bloom.Level]TierCount
}

// TierCounts returns the seen/correct counts attributable to a tier,
// preferring the breakdown sub-counts when present.
func (a *Attempt) TierCounts(level bloom.Level) (seen int, correct float64) {
	if len(a.Breakdown) > 0 {
		if tc, ok := a.Breakdown[level]; ok {
			return tc.Seen, tc.Correct
		}
		return 0, 0
	}
	if a.Level == level {
		return a.CardsSeen, a.CardsCorrect
	}
	return 0, 0
}
