package xp

import "math"

const (
	// BaseCost is the XP needed to go from level 1 to level 2.
	BaseCost = 200

	// Growth is the geometric multiplier on each level's incremental cost.
	Growth = 1.5

	// Granularity rounds incremental costs to friendly numbers.
	Granularity = 50

	// MaxLevel caps the threshold table.
	MaxLevel = 30
)

// thresholds[i] is the cumulative XP required for level i+1.
var thresholds = buildThresholds()

func buildThresholds() []int {
	t := make([]int, MaxLevel)
	t[0] = 0
	cost := float64(BaseCost)
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		rounded := int(math.Round(cost/Granularity)) * Granularity
		t[lvl-1] = t[lvl-2] + rounded
		cost = float64(rounded) * Growth
	}
	return t
}

// ThresholdForLevel returns the cumulative XP required to reach a level.
// Levels below 1 return 0; levels above MaxLevel return the top threshold.
func ThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return thresholds[level-1]
}

// LevelInfo describes where an XP total sits in the level table.
type LevelInfo struct {
	Level       int
	XPIntoLevel int
	XPForLevel  int // incremental cost of the current level's span, 0 at MaxLevel
	XPToNext    int // remaining XP to the next level, 0 at MaxLevel
}

// LevelFromXP returns the highest level whose threshold is at or below xp.
func LevelFromXP(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	level := 1
	for lvl := MaxLevel; lvl >= 1; lvl-- {
		if thresholds[lvl-1] <= xp {
			level = lvl
			break
		}
	}

	info := LevelInfo{
		Level:       level,
		XPIntoLevel: xp - thresholds[level-1],
	}
	if level < MaxLevel {
		span := thresholds[level] - thresholds[level-1]
		info.XPForLevel = span
		info.XPToNext = thresholds[level] - xp
	}
	return info
}
