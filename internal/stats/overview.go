package stats

import (
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
)

// MasteredThreshold is the blended mastery score at which a card counts
// as mastered in overview stats.
const MasteredThreshold = 0.80

// DeckOverview summarizes a learner's standing across one deck.
type DeckOverview struct {
	TotalCards      int
	DueCards        int
	StrugglingCards int
	MasteredCards   int
	AvgEase         float64
	AvgIntervalDays float64
	OverallAccuracy float64
}

// Overview aggregates card states into a deck summary.
func Overview(records []*mastery.CardState, now time.Time) DeckOverview {
	ov := DeckOverview{TotalCards: len(records)}
	if len(records) == 0 {
		return ov
	}

	var easeSum, intervalSum, attempts, correct float64
	for _, cs := range records {
		if cs.Srs.IsDue(now) {
			ov.DueCards++
		}
		if cs.Mastery < bloom.WeakThreshold || cs.Retention < 0.5 {
			ov.StrugglingCards++
		}
		if cs.Mastery >= MasteredThreshold {
			ov.MasteredCards++
		}
		easeSum += cs.Srs.Ease
		intervalSum += float64(cs.Srs.IntervalDays)
		attempts += float64(cs.Srs.Attempts)
		correct += cs.Srs.Correct
	}

	n := float64(len(records))
	ov.AvgEase = easeSum / n
	ov.AvgIntervalDays = intervalSum / n
	if attempts > 0 {
		ov.OverallAccuracy = correct / attempts
	}
	return ov
}
