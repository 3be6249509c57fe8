package mastery

import (
	"math"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

const (
	momentumDecay   = 0.7 // λ for the outcome-buffer weighting
	confidenceDecay = 0.6 // λ for the confidence EWMA

	retentionWeight  = 0.5
	momentumWeight   = 0.3
	confidenceWeight = 0.2

	// neutralConfidence seeds the EWMA for never-answered cards so the
	// first few answers don't drag Ci toward zero.
	neutralConfidence = 0.5

	recoveryBonus = 0.05

	consolidationStep = 0.07
	consolidationCap  = 0.15
)

// Apply records one answer: it advances the scheduler, updates the spacing
// evidence and outcome buffer, and recomputes the cached signals. The
// record is always left in a valid state.
func Apply(cs *CardState, o srs.Outcome, now time.Time, cfg bloom.TierConfig) {
	correct := o.Correct()

	// Gap since the previous review, in days. Zero for a first review.
	gap := 0.0
	if !cs.Srs.LastReview.IsZero() {
		gap = now.Sub(cs.Srs.LastReview).Hours() / 24
	}

	cs.Srs = cs.Srs.Review(o, now)

	spaced := gap >= cfg.TargetIntervalDays/2
	if correct && spaced {
		cs.Spacing.ShortGap = true
		cs.Spacing.ConsecutiveSpaced++
	} else {
		cs.Spacing.ConsecutiveSpaced = 0
	}
	if correct && gap >= cfg.TargetIntervalDays {
		cs.Spacing.LongGap = true
	}

	cs.Outcomes.Push(correct)
	cs.ConfidenceEwma = confidenceDecay*cs.ConfidenceEwma + (1-confidenceDecay)*confidencePoint(o)

	cs.Retention = retention(cs.Srs.IntervalDays, cfg.TargetIntervalDays, cs.Spacing.ConsecutiveSpaced)
	cs.Momentum = momentum(&cs.Outcomes)
	cs.Confidence = clamp01(cs.ConfidenceEwma)
	cs.Mastery = clamp01(retentionWeight*cs.Retention + momentumWeight*cs.Momentum + confidenceWeight*cs.Confidence)
	cs.UpdatedAt = now
}

// retention normalizes the scheduled interval against the tier's target on
// a log scale, then adds a diminishing consolidation boost for consecutive
// spaced successes.
func retention(intervalDays int, targetDays float64, consecutiveSpaced int) float64 {
	if targetDays <= 0 {
		return 0
	}
	base := math.Log2(float64(intervalDays)+1) / math.Log2(targetDays+1)
	boost := math.Min(consolidationCap, consolidationStep*float64(consecutiveSpaced))
	return clamp01(clamp01(base) + boost)
}

// momentum is the exponentially-weighted mean of the outcome buffer, with
// a flat bonus when the latest two outcomes show a fail-then-recover.
func momentum(ring *OutcomeRing) float64 {
	xs := ring.Ordered()
	if len(xs) == 0 {
		return 0
	}

	var num, den float64
	n := len(xs)
	for i, x := range xs {
		w := math.Pow(momentumDecay, float64(n-1-i))
		num += w * float64(x)
		den += w
	}
	m := num / den

	if n >= 2 && xs[n-2] == 0 && xs[n-1] == 1 {
		m += recoveryBonus
	}
	return clamp01(m)
}

// confidencePoint maps one answer to the confidence observation fed into
// the EWMA.
func confidencePoint(o srs.Outcome) float64 {
	if o.Confidence != srs.ConfidenceUnknown {
		c := o.Confidence
		if c < 0 {
			c = 0
		}
		if c > 3 {
			c = 3
		}
		return float64(c) / 3
	}
	if o.Guessed {
		return 0
	}
	if o.Correct() {
		return 0.7
	}
	return 0.3
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
