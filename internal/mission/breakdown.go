package mission

import (
	"math"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

// BreakdownEntry is the display form of one tier's share of a mission.
type BreakdownEntry struct {
	Seen     int     `json:"seen"`
	Correct  int     `json:"correct"`
	ScorePct float64 `json:"score_pct"`
}

// ToBreakdown converts raw per-tier counts into display entries: correct
// counts round to the nearest integer, scores to one decimal, and tiers
// with nothing seen are omitted.
func ToBreakdown(counts map[bloom.Level]TierCount) map[bloom.Level]BreakdownEntry {
	out := make(map[bloom.Level]BreakdownEntry, len(counts))
	for level, tc := range counts {
		if tc.Seen == 0 {
			continue
		}
		score := 100 * tc.Correct / float64(tc.Seen)
		out[level] = BreakdownEntry{
			Seen:     tc.Seen,
			Correct:  int(math.Round(tc.Correct)),
			ScorePct: math.Round(score*10) / 10,
		}
	}
	return out
}
