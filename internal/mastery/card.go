package mastery

import (
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

// SpacingEvidence tracks whether a card has been answered correctly after
// meaningful gaps, relative to its tier's target interval.
type SpacingEvidence struct {
	// ShortGap is set once a success lands after at least half the target interval.
	ShortGap bool `json:"short_gap"`
	// LongGap is set once a success lands after at least the full target interval.
	LongGap bool `json:"long_gap"`
	// ConsecutiveSpaced counts successive sufficiently-spaced successes.
	ConsecutiveSpaced int `json:"consecutive_spaced"`
}

// CardState is the full mastery record for one learner×card pair. It is
// owned by the learner and mutated only by Apply on each answer event.
type CardState struct {
	LearnerID string
	CardID    string
	DeckID    int64
	Level     bloom.Level
	Topic     string
	Kind      string

	Srs      srs.State
	Spacing  SpacingEvidence
	Outcomes OutcomeRing

	// ConfidenceEwma is the decayed per-answer confidence signal.
	ConfidenceEwma float64

	// Cached signals, all in [0,1].
	Retention  float64 // Ri
	Momentum   float64 // Ai
	Confidence float64 // Ci
	Mastery    float64 // Mi

	UpdatedAt time.Time
}

// NewCardState returns the record for a card the learner has never answered.
func NewCardState(learnerID, cardID string, deckID int64, level bloom.Level, topic, kind string) *CardState {
	return &CardState{
		LearnerID:      learnerID,
		CardID:         cardID,
		DeckID:         deckID,
		Level:          level,
		Topic:          topic,
		Kind:           kind,
		Srs:            srs.NewState(),
		ConfidenceEwma: neutralConfidence,
	}
}
