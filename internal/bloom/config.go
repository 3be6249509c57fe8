package bloom

// TierConfig holds the tuning for a single cognitive tier.
type TierConfig struct {
	Level Level

	// TargetIntervalDays is the spacing goal used to normalize retention:
	// a card reviewed successfully at this interval counts as fully retained.
	TargetIntervalDays float64

	// MissionCap is the maximum number of cards per mission; the number of
	// missions for a tier is ceil(totalCards / MissionCap).
	MissionCap int

	// XPMultiplier scales per-correct XP for missions at this tier.
	XPMultiplier float64
}

var tierConfigs = map[Level]TierConfig{
	Remember:   {Level: Remember, TargetIntervalDays: 7, MissionCap: 10, XPMultiplier: 1.0},
	Understand: {Level: Understand, TargetIntervalDays: 10, MissionCap: 10, XPMultiplier: 1.2},
	Apply:      {Level: Apply, TargetIntervalDays: 14, MissionCap: 10, XPMultiplier: 1.5},
	Analyze:    {Level: Analyze, TargetIntervalDays: 21, MissionCap: 8, XPMultiplier: 1.8},
	Evaluate:   {Level: Evaluate, TargetIntervalDays: 30, MissionCap: 8, XPMultiplier: 2.2},
	Create:     {Level: Create, TargetIntervalDays: 45, MissionCap: 6, XPMultiplier: 2.6},
}

// ConfigFor returns the tier config for a level. Unknown levels fall back
// to the Remember config so callers never divide by a zero target interval.
func ConfigFor(l Level) TierConfig {
	if cfg, ok := tierConfigs[l]; ok {
		return cfg
	}
	cfg := tierConfigs[Remember]
	cfg.Level = l
	return cfg
}
