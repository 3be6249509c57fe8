package mastery

// OutcomeWindow is the capacity of the per-card outcome buffer.
const OutcomeWindow = 8

// OutcomeRing is a fixed-capacity circular buffer of binarized review
// outcomes (1 = correct, 0 = incorrect) with a write cursor.
type OutcomeRing struct {
	Values [OutcomeWindow]int `json:"values"`
	Cursor int                `json:"cursor"`
	Count  int                `json:"count"`
}

// Push appends an outcome, overwriting the oldest once the buffer is full.
func (r *OutcomeRing) Push(correct bool) {
	v := 0
	if correct {
		v = 1
	}
	r.Values[r.Cursor] = v
	r.Cursor = (r.Cursor + 1) % OutcomeWindow
	if r.Count < OutcomeWindow {
		r.Count++
	}
}

// Ordered returns the buffered outcomes oldest first.
func (r *OutcomeRing) Ordered() []int {
	out := make([]int, 0, r.Count)
	start := r.Cursor - r.Count
	for i := 0; i < r.Count; i++ {
		idx := (start + i + OutcomeWindow) % OutcomeWindow
		out = append(out, r.Values[idx])
	}
	return out
}
