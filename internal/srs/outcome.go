package srs

import "math"

// ConfidenceUnknown marks an outcome with no self-reported confidence.
const ConfidenceUnknown = -1

// Outcome is a single review answer. Correctness is fractional to support
// partial-credit card types; booleans map to 0 or 1 via BoolOutcome.
type Outcome struct {
	Correctness float64
	LatencyMs   int  // 0 means unknown
	Confidence  int  // 0-3, ConfidenceUnknown if not supplied
	Guessed     bool
}

// BoolOutcome builds an outcome from a plain right/wrong answer.
func BoolOutcome(correct bool) Outcome {
	o := Outcome{Confidence: ConfidenceUnknown}
	if correct {
		o.Correctness = 1
	}
	return o
}

// Correct reports whether the outcome rounds toward "correct".
func (o Outcome) Correct() bool {
	return o.normalized().Correctness > 0.5
}

// normalized coerces every field into its valid domain. Out-of-range
// values are clamped, never rejected.
func (o Outcome) normalized() Outcome {
	if math.IsNaN(o.Correctness) {
		o.Correctness = 0
	}
	o.Correctness = clamp(o.Correctness, 0, 1)
	if o.LatencyMs < 0 {
		o.LatencyMs = 0
	}
	if o.Confidence != ConfidenceUnknown {
		if o.Confidence < 0 {
			o.Confidence = 0
		}
		if o.Confidence > 3 {
			o.Confidence = 3
		}
	}
	return o
}

const (
	fastLatencyMs = 2000
	slowLatencyMs = 8000
)

// Grade converts an outcome into an SM-2 style recall grade in [0,5].
//
// The base grade is 2 + 2c; fast correct answers earn +0.5, slow correct
// answers lose 0.5, self-reported confidence shifts the grade by up to
// ±0.25, and a guessed-but-correct answer is capped at 3.
func Grade(o Outcome) float64 {
	o = o.normalized()
	c := o.Correctness

	g := 2 + 2*c
	if c > 0.5 {
		if o.LatencyMs > 0 && o.LatencyMs < fastLatencyMs {
			g += 0.5
		}
		if o.LatencyMs > slowLatencyMs {
			g -= 0.5
		}
	}
	if o.Confidence != ConfidenceUnknown {
		g += 0.5 * (float64(o.Confidence)/3 - 0.5)
	}
	if o.Guessed && c > 0.5 && g > 3 {
		g = 3
	}
	return clamp(g, 0, 5)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
