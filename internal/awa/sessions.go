package awa

import (
	"math"
	"sort"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
)

const (
	// HistoryWindowDays bounds how far back mission history is pulled.
	HistoryWindowDays = 60

	// BundleWindow groups attempts into one sitting: an attempt joins the
	// first session whose current end lies within this window.
	BundleWindow = 20 * time.Minute

	// CoverageCap limits how much of a tier one sitting can claim, so a
	// single cramming session cannot saturate the score.
	CoverageCap = 0.5

	// MinCoverage is the floor below which an old session is noise.
	MinCoverage = 0.05

	// RecentGrace keeps tiny sessions that ended within the last day.
	RecentGrace = 24 * time.Hour

	// HalfLifeDays is the recency half-life for session weighting.
	HalfLifeDays = 7.0
)

// Session is a bundle of mission attempts completed in one sitting.
type Session struct {
	Start   time.Time
	End     time.Time
	Seen    int
	Correct float64
	Cards   map[string]struct{}
}

// Accuracy is the session's raw correct/seen ratio.
func (s *Session) Accuracy() float64 {
	if s.Seen == 0 {
		return 0
	}
	return s.Correct / float64(s.Seen)
}

// Coverage estimates the share of the tier's cards this session touched,
// capped at CoverageCap. Distinct answered card ids are preferred; when an
// attempt carries none, its seen count stands in as a proxy.
func (s *Session) Coverage(totalTierCards int) float64 {
	if totalTierCards <= 0 {
		return 0
	}
	touched := len(s.Cards)
	if touched == 0 {
		touched = s.Seen
	}
	return math.Min(float64(touched)/float64(totalTierCards), CoverageCap)
}

// BundleSessions groups attempts by end-time proximity. Attempts are
// walked in end-time order and each joins the first session whose current
// end is within BundleWindow, stretching that session's bounds; union by
// proximity, not just adjacency to the latest attempt.
func BundleSessions(attempts []mission.Attempt, level bloom.Level) []*Session {
	sorted := make([]mission.Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EndedAt.Before(sorted[j].EndedAt)
	})

	var sessions []*Session
	for _, a := range sorted {
		seen, correct := a.TierCounts(level)
		if seen == 0 {
			continue
		}

		var target *Session
		for _, s := range sessions {
			gap := a.EndedAt.Sub(s.End)
			if gap < 0 {
				gap = -gap
			}
			if gap <= BundleWindow {
				target = s
				break
			}
		}
		if target == nil {
			target = &Session{
				Start: a.EndedAt,
				End:   a.EndedAt,
				Cards: make(map[string]struct{}),
			}
			sessions = append(sessions, target)
		}

		if !a.StartedAt.IsZero() && a.StartedAt.Before(target.Start) {
			target.Start = a.StartedAt
		}
		if a.EndedAt.After(target.End) {
			target.End = a.EndedAt
		}
		target.Seen += seen
		target.Correct += correct
		for _, id := range a.AnsweredIDs {
			target.Cards[id] = struct{}{}
		}
	}
	return sessions
}

// TimeDecay is the recency weight for a session that ended d days ago.
func TimeDecay(days float64) float64 {
	if days < 0 {
		days = 0
	}
	return math.Pow(0.5, days/HalfLifeDays)
}

// Accuracy computes the attempt-weighted accuracy for a tier from its
// bundled sessions. Old low-coverage sessions are excluded outright; they
// contribute to neither the numerator nor the denominator.
func Accuracy(sessions []*Session, totalTierCards int, now time.Time) float64 {
	var num, den float64
	for _, s := range sessions {
		cov := s.Coverage(totalTierCards)
		if cov < MinCoverage && now.Sub(s.End) > RecentGrace {
			continue
		}
		days := now.Sub(s.End).Hours() / 24
		w := TimeDecay(days) * cov
		if w <= 0 {
			continue
		}
		num += w * s.Accuracy()
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}
