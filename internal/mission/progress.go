package mission

import "github.com/bloomdeck/bloomdeck/internal/bloom"

// TierProgress tracks one tier's mission counters for a learner×deck.
// Counters are monotonic non-decreasing except on explicit reset.
type TierProgress struct {
	TotalCards        int  `json:"total_cards"`
	TotalMissions     int  `json:"total_missions"`
	MissionsCompleted int  `json:"missions_completed"`
	MissionsPassed    int  `json:"missions_passed"`
	Mastered          bool `json:"mastered"`
	Cleared           bool `json:"cleared"`
}

// Progress maps each tier to its counters.
type Progress map[bloom.Level]TierProgress

// SeedProgress builds fresh zeroed counters from current card counts, so
// totals are correct immediately after a reset or first run.
func SeedProgress(cardCounts map[bloom.Level]int) Progress {
	p := make(Progress, len(bloom.AllLevels()))
	for _, level := range bloom.AllLevels() {
		total := cardCounts[level]
		p[level] = TierProgress{
			TotalCards:    total,
			TotalMissions: TotalMissions(total, bloom.ConfigFor(level).MissionCap),
		}
	}
	return p
}

// TotalMissions is ceil(totalCards / missionCap).
func TotalMissions(totalCards, missionCap int) int {
	if totalCards <= 0 || missionCap <= 0 {
		return 0
	}
	return (totalCards + missionCap - 1) / missionCap
}

// RecordAttempt advances a tier's counters for one recorded mission.
// Counters saturate at TotalMissions so replays keep
// missionsPassed <= missionsCompleted <= totalMissions; a tier whose
// missions are all passed is flagged cleared.
func (p Progress) RecordAttempt(level bloom.Level, passed bool) {
	tp := p[level]
	if tp.TotalMissions == 0 || tp.MissionsCompleted < tp.TotalMissions {
		tp.MissionsCompleted++
	}
	if passed && tp.MissionsPassed < tp.MissionsCompleted {
		tp.MissionsPassed++
	}
	if tp.TotalMissions > 0 && tp.MissionsPassed >= tp.TotalMissions {
		tp.Cleared = true
	}
	p[level] = tp
}

// Retotal updates TotalCards/TotalMissions after deck content changes,
// leaving the monotonic counters untouched. It returns true when any tier
// total moved, so callers can flag a re-run prompt.
func (p Progress) Retotal(cardCounts map[bloom.Level]int) bool {
	changed := false
	for _, level := range bloom.AllLevels() {
		tp := p[level]
		total := cardCounts[level]
		missions := TotalMissions(total, bloom.ConfigFor(level).MissionCap)
		if tp.TotalCards != total || tp.TotalMissions != missions {
			tp.TotalCards = total
			tp.TotalMissions = missions
			p[level] = tp
			changed = true
		}
	}
	return changed
}
