package awa

import (
	"math"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

const (
	// RetentionFloor avoids zero-division artifacts dragging a card's
	// retention ratio to nothing.
	RetentionFloor = 0.2

	// retentionBlendWeight and accuracyBlendWeight combine retention and
	// attempt-weighted accuracy into the persisted mastery percentage.
	retentionBlendWeight = 0.6
	accuracyBlendWeight  = 0.4

	// ewmaAlpha smooths the legacy correctness score toward the latest
	// mission's raw percentage.
	ewmaAlpha = 0.4
)

// SrsCount is a card's lifetime attempt/correct tally.
type SrsCount struct {
	CardID   string
	Attempts int
	Correct  float64
}

// TierMastery is the persisted, learner-facing mastery row for one
// learner×deck×tier.
type TierMastery struct {
	LearnerID string
	DeckID    int64
	Level     bloom.Level

	// CorrectnessEwma is the legacy recency-smoothed score kept for
	// display compatibility; it does not feed MasteryPct.
	CorrectnessEwma   float64
	RetentionStrength float64 // [0,1]
	Coverage          float64 // [0,1]
	MasteryPct        int     // [0,100]

	UpdatedAt time.Time
}

// RetentionStrength averages per-card correct/attempt ratios across
// attempted cards, flooring each ratio at RetentionFloor. Returns 0 when
// no card has been attempted.
func RetentionStrength(counts []SrsCount) float64 {
	var sum float64
	attempted := 0
	for _, c := range counts {
		if c.Attempts <= 0 {
			continue
		}
		ratio := c.Correct / float64(c.Attempts)
		if ratio < RetentionFloor {
			ratio = RetentionFloor
		}
		if ratio > 1 {
			ratio = 1
		}
		sum += ratio
		attempted++
	}
	if attempted == 0 {
		return 0
	}
	return sum / float64(attempted)
}

// BlendedPct combines retention strength and attempt-weighted accuracy
// into the persisted mastery percentage.
func BlendedPct(retention, accuracy float64) int {
	pct := retentionBlendWeight*retention*100 + accuracyBlendWeight*accuracy*100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}

// SmoothedScore advances the legacy EWMA toward the latest mission's raw
// score percentage. The first observation becomes the EWMA as-is.
func SmoothedScore(prev float64, latestScorePct float64, hasPrev bool) float64 {
	if !hasPrev {
		return latestScorePct
	}
	return ewmaAlpha*latestScorePct + (1-ewmaAlpha)*prev
}
