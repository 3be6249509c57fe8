package stats

import (
	"sort"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/srs"
)

// CardStat is one card's scheduling state joined with its answer history,
// used by the stats views.
type CardStat struct {
	CardID          string
	Attempts        int
	Correct         float64
	Ease            float64
	IntervalDays    int
	BestCorrectness float64
	AvgCorrectness  float64
	AnsweredAt      time.Time
}

// AnswerStat is a single recorded answer for a card.
type AnswerStat struct {
	CardID      string
	Correctness float64
	AnsweredAt  time.Time
}

// MergeCardStats folds per-answer records into the per-card base rows.
// Cards that appear only in answers get a synthesized base row with zero
// attempts and the default ease. AnsweredAt always keeps the latest
// timestamp by comparison, regardless of answer order.
func MergeCardStats(base []CardStat, answers []AnswerStat) []CardStat {
	out := make([]CardStat, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].CardID] = i
	}

	type agg struct {
		best  float64
		sum   float64
		count int
		last  time.Time
	}
	aggs := make(map[string]*agg)
	var order []string
	for _, a := range answers {
		g, ok := aggs[a.CardID]
		if !ok {
			g = &agg{}
			aggs[a.CardID] = g
			order = append(order, a.CardID)
		}
		if a.Correctness > g.best {
			g.best = a.Correctness
		}
		g.sum += a.Correctness
		g.count++
		if a.AnsweredAt.After(g.last) {
			g.last = a.AnsweredAt
		}
	}

	// Synthesized rows keep a stable order.
	sort.Strings(order)
	for _, cardID := range order {
		if _, ok := index[cardID]; ok {
			continue
		}
		index[cardID] = len(out)
		out = append(out, CardStat{CardID: cardID, Ease: srs.DefaultEase})
	}

	for cardID, g := range aggs {
		row := &out[index[cardID]]
		if g.best > row.BestCorrectness {
			row.BestCorrectness = g.best
		}
		row.AvgCorrectness = g.sum / float64(g.count)
		if g.last.After(row.AnsweredAt) {
			row.AnsweredAt = g.last
		}
	}

	if out == nil {
		return []CardStat{}
	}
	return out
}
