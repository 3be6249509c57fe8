package srs

import (
	"math"
	"time"
)

const (
	// MinEase and MaxEase bound the ease factor.
	MinEase = 1.3
	MaxEase = 2.8

	// DefaultEase is the starting ease factor for new cards.
	DefaultEase = 2.5

	// PassingGrade separates a successful review from a lapse.
	PassingGrade = 3.0
)

// HistoryEntry is one reviewed grade, kept append-only for diagnostics
// and leech detection.
type HistoryEntry struct {
	At    time.Time `json:"at"`
	Grade float64   `json:"grade"`
}

// State is the per-card scheduling state.
type State struct {
	Ease         float64        `json:"ease"`
	Repetitions  int            `json:"repetitions"`
	IntervalDays int            `json:"interval_days"`
	Due          time.Time      `json:"due"`
	Attempts     int            `json:"attempts"`
	Correct      float64        `json:"correct"` // fractional credit accumulates
	LastReview   time.Time      `json:"last_review"`
	History      []HistoryEntry `json:"history"`
}

// NewState returns the scheduling state for a never-reviewed card.
func NewState() State {
	return State{Ease: DefaultEase}
}

// Review advances the scheduling state for one answer. It never fails:
// out-of-domain inputs are clamped and a valid next state is always
// returned.
func (s State) Review(o Outcome, now time.Time) State {
	o = o.normalized()
	grade := Grade(o)

	q := 5 - grade
	s.Ease = clamp(s.Ease+0.1-q*(0.08+q*0.02), MinEase, MaxEase)

	if grade < PassingGrade {
		s.Repetitions = 0
		s.IntervalDays = 1
	} else {
		s.Repetitions++
		switch s.Repetitions {
		case 1:
			s.IntervalDays = 1
		case 2:
			s.IntervalDays = 6
		default:
			s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.Ease))
		}
	}

	days := s.IntervalDays
	if days < 1 {
		days = 1
	}
	s.Due = now.AddDate(0, 0, days)
	s.Attempts++
	s.Correct += o.Correctness
	s.LastReview = now
	s.History = append(s.History, HistoryEntry{At: now, Grade: grade})
	return s
}

// IsDue reports whether the card is due at or before now.
func (s State) IsDue(now time.Time) bool {
	return !now.Before(s.Due)
}

// OverdueDays returns how many days past due the card is, 0 if not yet due.
func (s State) OverdueDays(now time.Time) float64 {
	if now.Before(s.Due) {
		return 0
	}
	return now.Sub(s.Due).Hours() / 24
}
