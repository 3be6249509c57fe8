package mission

import (
	"fmt"
	"math"
)

// ValidationError rejects a malformed attempt before any state changes.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validate checks an attempt's numeric fields and normalizes the rest.
// Out-of-domain deck ids and counts are rejected; cardsCorrect is clamped
// into [0, cardsSeen] and the mode defaults to a known value. Numeric
// edges (NaN, infinities) are treated as malformed input, not panics.
func (a *Attempt) Validate() error {
	if a.DeckID < 0 {
		return &ValidationError{Field: "deckId", Msg: "must be non-negative"}
	}
	if a.LearnerID == "" {
		return &ValidationError{Field: "learnerId", Msg: "must not be empty"}
	}
	if !a.Level.Valid() {
		return &ValidationError{Field: "level", Msg: fmt.Sprintf("unknown tier %d", int(a.Level))}
	}
	if math.IsNaN(a.CardsCorrect) || math.IsInf(a.CardsCorrect, 0) {
		return &ValidationError{Field: "correct", Msg: "must be finite"}
	}
	if a.CardsCorrect < 0 {
		return &ValidationError{Field: "correct", Msg: "must be non-negative"}
	}
	if a.CardsSeen < 0 {
		return &ValidationError{Field: "total", Msg: "must be non-negative"}
	}

	if a.CardsCorrect > float64(a.CardsSeen) {
		a.CardsCorrect = float64(a.CardsSeen)
	}
	a.Mode = NormalizeMode(string(a.Mode))
	for level, tc := range a.Breakdown {
		if math.IsNaN(tc.Correct) || math.IsInf(tc.Correct, 0) {
			return &ValidationError{Field: "breakdown." + level.String(), Msg: "correct must be finite"}
		}
		if tc.Correct < 0 {
			tc.Correct = 0
		}
		if tc.Seen < 0 {
			tc.Seen = 0
		}
		if tc.Correct > float64(tc.Seen) {
			tc.Correct = float64(tc.Seen)
		}
		a.Breakdown[level] = tc
	}
	return nil
}
