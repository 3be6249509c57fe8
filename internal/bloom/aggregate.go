package bloom

import "fmt"

// WeakThreshold is the mastery score below which a card counts as weak.
const WeakThreshold = 0.60

// CardEvidence is the per-card input to tier aggregation: the blended
// mastery score plus the spacing evidence bits and a grouping key for
// the diversity check.
type CardEvidence struct {
	Mastery  float64
	ShortGap bool
	LongGap  bool
	Kind     string
}

// TierSummary is the rolled-up view of one tier's cards.
type TierSummary struct {
	MeanMastery float64
	WeakShare   float64
	CardCount   int
}

// Summarize rolls per-card mastery up to a tier summary.
func Summarize(cards []CardEvidence) TierSummary {
	if len(cards) == 0 {
		return TierSummary{}
	}
	var sum float64
	weak := 0
	for _, c := range cards {
		sum += c.Mastery
		if c.Mastery < WeakThreshold {
			weak++
		}
	}
	n := float64(len(cards))
	return TierSummary{
		MeanMastery: sum / n,
		WeakShare:   float64(weak) / n,
		CardCount:   len(cards),
	}
}

// DiversityPredicate decides whether a tier's card set is varied enough to
// graduate. The concrete policy is a configuration point.
type DiversityPredicate func(level Level, cards []CardEvidence) bool

// PermissiveDiversity accepts any card set.
func PermissiveDiversity(Level, []CardEvidence) bool { return true }

// GraduationPolicy holds the thresholds for the graduation gate.
type GraduationPolicy struct {
	MinMeanMastery float64
	MaxWeakShare   float64
	MinSpacedShare float64
	Diversity      DiversityPredicate
}

// DefaultGraduationPolicy returns the standard gate thresholds.
func DefaultGraduationPolicy() GraduationPolicy {
	return GraduationPolicy{
		MinMeanMastery: 0.80,
		MaxWeakShare:   0.10,
		MinSpacedShare: 0.80,
		Diversity:      PermissiveDiversity,
	}
}

// GraduationResult reports whether a tier qualifies for graduation and,
// when it does not, every reason it fell short. The result is diagnostic;
// tier unlocking is decided by the mission progression rules, not here.
type GraduationResult struct {
	Eligible bool
	Summary  TierSummary
	Reasons  []string
}

// Evaluate runs the graduation gate over a tier's cards.
func (p GraduationPolicy) Evaluate(level Level, cards []CardEvidence) GraduationResult {
	summary := Summarize(cards)
	result := GraduationResult{Summary: summary}

	if summary.CardCount == 0 {
		result.Reasons = append(result.Reasons, "no cards studied at this tier")
		return result
	}
	if summary.MeanMastery < p.MinMeanMastery {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("mean mastery %.2f below %.2f", summary.MeanMastery, p.MinMeanMastery))
	}
	if summary.WeakShare > p.MaxWeakShare {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("weak card share %.2f above %.2f", summary.WeakShare, p.MaxWeakShare))
	}

	spaced := 0
	for _, c := range cards {
		if c.ShortGap && c.LongGap {
			spaced++
		}
	}
	spacedShare := float64(spaced) / float64(summary.CardCount)
	if spacedShare < p.MinSpacedShare {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("spaced success share %.2f below %.2f", spacedShare, p.MinSpacedShare))
	}

	// Higher tiers additionally need a varied card set.
	if level >= Apply {
		diversity := p.Diversity
		if diversity == nil {
			diversity = PermissiveDiversity
		}
		if !diversity(level, cards) {
			result.Reasons = append(result.Reasons, "card set lacks type/topic diversity")
		}
	}

	result.Eligible = len(result.Reasons) == 0
	return result
}
