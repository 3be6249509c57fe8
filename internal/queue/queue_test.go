package queue

import (
	"testing"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
)

var queueTime = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func queueCard(id, topic string, due time.Time, mast, ret float64) *mastery.CardState {
	cs := mastery.NewCardState("learner-1", id, 1, bloom.Remember, topic, "")
	cs.Srs.Due = due
	cs.Mastery = mast
	cs.Retention = ret
	return cs
}

func ids(cards []*mastery.CardState) []string {
	out := make([]string, len(cards))
	for i, cs := range cards {
		out[i] = cs.CardID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDue_MostOverdueFirst(t *testing.T) {
	records := []*mastery.CardState{
		queueCard("fresh", "", queueTime.AddDate(0, 0, 3), 0.9, 0.9),
		queueCard("late", "", queueTime.AddDate(0, 0, -2), 0.9, 0.9),
		queueCard("later", "", queueTime.AddDate(0, 0, -5), 0.9, 0.9),
		queueCard("now", "", queueTime, 0.9, 0.9),
	}
	got := ids(Due(records, queueTime))
	if !equalIDs(got, "later", "late", "now") {
		t.Errorf("due order = %v", got)
	}
}

func TestStruggling_WeakestFirst(t *testing.T) {
	records := []*mastery.CardState{
		queueCard("fine", "", queueTime, 0.9, 0.9),
		queueCard("weak", "", queueTime, 0.4, 0.9),
		queueCard("weaker", "", queueTime, 0.2, 0.9),
		queueCard("low-retention", "", queueTime, 0.8, 0.3),
	}
	got := ids(Struggling(records))
	if !equalIDs(got, "weaker", "weak", "low-retention") {
		t.Errorf("struggling order = %v", got)
	}
}

func TestInterleave_RoundRobin(t *testing.T) {
	cards := []*mastery.CardState{
		queueCard("a1", "algebra", queueTime, 0, 0),
		queueCard("a2", "algebra", queueTime, 0, 0),
		queueCard("g1", "geometry", queueTime, 0, 0),
		queueCard("a3", "algebra", queueTime, 0, 0),
		queueCard("g2", "geometry", queueTime, 0, 0),
	}
	got := ids(Interleave(cards, DefaultClassifier))
	if !equalIDs(got, "a1", "g1", "a2", "g2", "a3") {
		t.Errorf("interleaved = %v", got)
	}
}

func TestInterleave_SingleBucketUnchanged(t *testing.T) {
	cards := []*mastery.CardState{
		queueCard("a1", "algebra", queueTime, 0, 0),
		queueCard("a2", "algebra", queueTime, 0, 0),
	}
	got := ids(Interleave(cards, DefaultClassifier))
	if !equalIDs(got, "a1", "a2") {
		t.Errorf("single bucket order = %v", got)
	}
}

func TestInterleave_NilClassifierFallsBack(t *testing.T) {
	cards := []*mastery.CardState{
		queueCard("t1", "topic", queueTime, 0, 0),
		queueCard("k1", "", queueTime, 0, 0),
	}
	cards[1].Kind = "cloze"
	got := ids(Interleave(cards, nil))
	if len(got) != 2 {
		t.Errorf("interleaved = %v", got)
	}
}

func TestDefaultClassifier(t *testing.T) {
	cs := queueCard("x", "algebra", queueTime, 0, 0)
	if DefaultClassifier(cs) != "algebra" {
		t.Error("topic should win")
	}
	cs.Topic = ""
	cs.Kind = "cloze"
	if DefaultClassifier(cs) != "cloze" {
		t.Error("kind should back up topic")
	}
	cs.Kind = ""
	if DefaultClassifier(cs) != "default" {
		t.Error("shared bucket fallback")
	}
}
