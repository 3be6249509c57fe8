package mission

// PassThresholdPct is the minimum mission score to pass, in percent.
const PassThresholdPct = 65.0

// Score returns the raw mission percentage and the pass decision.
//
// The comparison uses the unrounded float: a mission at 64.95% displays as
// "65.0%" but must still fail, and 65.0001% must pass. Display rounding
// never feeds the pass/fail branch.
func Score(correct float64, total int) (scorePct float64, passed bool) {
	if total <= 0 {
		return 0, false
	}
	scorePct = 100 * correct / float64(total)
	return scorePct, scorePct >= PassThresholdPct
}
