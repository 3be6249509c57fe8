package mission

import "github.com/bloomdeck/bloomdeck/internal/bloom"

// UnlockRule is one alternative proof that the tier above a given tier
// may be studied. Rules are evaluated in order; any match unlocks.
// Keeping them as an explicit list keeps the accumulated product policy
// auditable and testable in isolation.
type UnlockRule struct {
	Name      string
	Satisfied func(prev TierProgress, bestPrevScorePct float64) bool
}

// DefaultUnlockRules returns the standard proofs, strongest first.
func DefaultUnlockRules() []UnlockRule {
	return []UnlockRule{
		{
			Name: "previous-tier-mastered",
			Satisfied: func(prev TierProgress, _ float64) bool {
				return prev.Mastered
			},
		},
		{
			Name: "previous-tier-cleared",
			Satisfied: func(prev TierProgress, _ float64) bool {
				return prev.Cleared
			},
		},
		{
			Name: "previous-tier-passed-mission",
			Satisfied: func(prev TierProgress, _ float64) bool {
				return prev.MissionsPassed > 0
			},
		},
		{
			Name: "previous-tier-best-score",
			Satisfied: func(_ TierProgress, best float64) bool {
				return best >= PassThresholdPct
			},
		},
	}
}

// Unlocked evaluates the rule list for a tier. The first tier is always
// unlocked. bestPrevScorePct is the best historical mission score for the
// previous tier, as a raw percentage.
func Unlocked(level bloom.Level, prog Progress, bestPrevScorePct float64, rules []UnlockRule) (bool, string) {
	prev, ok := level.Prev()
	if !ok {
		return true, "first-tier"
	}
	if rules == nil {
		rules = DefaultUnlockRules()
	}
	prevProgress := prog[prev]
	for _, r := range rules {
		if r.Satisfied(prevProgress, bestPrevScorePct) {
			return true, r.Name
		}
	}
	return false, ""
}
