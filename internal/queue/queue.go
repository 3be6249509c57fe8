package queue

import (
	"sort"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
)

// Mode selects which review queue to build.
type Mode string

const (
	ModeDue      Mode = "due"
	ModeStruggle Mode = "struggle"
)

// struggleRetention is the retention floor below which a card is
// struggling even when its blended mastery looks fine.
const struggleRetention = 0.5

// Due returns cards whose next review is at or before now, most overdue
// first.
func Due(records []*mastery.CardState, now time.Time) []*mastery.CardState {
	var due []*mastery.CardState
	for _, cs := range records {
		if cs.Srs.IsDue(now) {
			due = append(due, cs)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Srs.Due.Before(due[j].Srs.Due)
	})
	return due
}

// Struggling returns cards with weak mastery or weak retention, weakest
// first.
func Struggling(records []*mastery.CardState) []*mastery.CardState {
	var out []*mastery.CardState
	for _, cs := range records {
		if cs.Mastery < bloom.WeakThreshold || cs.Retention < struggleRetention {
			out = append(out, cs)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mastery != out[j].Mastery {
			return out[i].Mastery < out[j].Mastery
		}
		return out[i].Retention < out[j].Retention
	})
	return out
}
