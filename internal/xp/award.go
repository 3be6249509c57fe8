package xp

import (
	"math"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
)

// BaseXPPerCorrect is the XP earned per correct card before tier scaling.
const BaseXPPerCorrect = 10

// MissionAward computes the XP for a completed mission from its per-tier
// correct counts. Fractional correct counts (partial credit) scale XP
// proportionally; the final award rounds to the nearest whole point.
func MissionAward(correctByLevel map[bloom.Level]float64) int {
	var total float64
	for level, correct := range correctByLevel {
		if correct <= 0 {
			continue
		}
		total += correct * BaseXPPerCorrect * bloom.ConfigFor(level).XPMultiplier
	}
	return int(math.Round(total))
}
