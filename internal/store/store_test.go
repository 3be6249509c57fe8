package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

var storeTime = time.Date(2026, 7, 1, 14, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func seedTestCards(t *testing.T, s *Store) {
	t.Helper()
	err := s.SeedCards(context.Background(), []CardRef{
		{CardID: "c1", DeckID: 1, Level: bloom.Remember, Topic: "algebra", Kind: "recall"},
		{CardID: "c2", DeckID: 1, Level: bloom.Remember, Topic: "geometry", Kind: "recall"},
		{CardID: "c3", DeckID: 1, Level: bloom.Apply, Topic: "algebra", Kind: "cloze"},
		{CardID: "d1", DeckID: 2, Level: bloom.Remember, Topic: "", Kind: ""},
	})
	if err != nil {
		t.Fatalf("seed cards: %v", err)
	}
}

func TestCards_SeedFindListCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedTestCards(t, s)

	ref, err := s.FindCard(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if ref == nil || ref.DeckID != 1 || ref.Level != bloom.Remember || ref.Topic != "algebra" {
		t.Errorf("found card = %+v", ref)
	}

	missing, err := s.FindCard(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("missing card = %+v, %v", missing, err)
	}

	refs, err := s.ListCardsForTier(ctx, 1, bloom.Remember)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Errorf("tier cards = %d, want 2", len(refs))
	}

	counts, err := s.CountCardsByTier(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if counts[bloom.Remember] != 2 || counts[bloom.Apply] != 1 {
		t.Errorf("counts = %v", counts)
	}

	// Seeding again with changed metadata upserts, not duplicates.
	err = s.SeedCards(ctx, []CardRef{{CardID: "c1", DeckID: 1, Level: bloom.Remember, Topic: "trig", Kind: "recall"}})
	if err != nil {
		t.Fatal(err)
	}
	ref, _ = s.FindCard(ctx, "c1")
	if ref.Topic != "trig" {
		t.Errorf("topic after reseed = %s", ref.Topic)
	}
	counts, _ = s.CountCardsByTier(ctx, 1)
	if counts[bloom.Remember] != 2 {
		t.Errorf("counts after reseed = %v", counts)
	}
}

func TestCardState_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedTestCards(t, s)

	cs := mastery.NewCardState("learner-1", "c1", 1, bloom.Remember, "algebra", "recall")
	mastery.Apply(cs, srs.BoolOutcome(true), storeTime, bloom.ConfigFor(bloom.Remember))
	mastery.Apply(cs, srs.BoolOutcome(false), storeTime.AddDate(0, 0, 1), bloom.ConfigFor(bloom.Remember))

	if err := s.SaveCardState(ctx, cs); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadCardState(ctx, "learner-1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("state not found after save")
	}
	if got.Srs.Attempts != 2 || got.Srs.Repetitions != cs.Srs.Repetitions {
		t.Errorf("srs state = %+v", got.Srs)
	}
	if len(got.Srs.History) != 2 {
		t.Errorf("history length = %d, want 2", len(got.Srs.History))
	}
	if !got.Srs.Due.Equal(cs.Srs.Due) {
		t.Errorf("due = %v, want %v", got.Srs.Due, cs.Srs.Due)
	}
	if math.Abs(got.Mastery-cs.Mastery) > 1e-9 {
		t.Errorf("mastery = %v, want %v", got.Mastery, cs.Mastery)
	}
	if got.Outcomes.Count != 2 {
		t.Errorf("outcome ring = %+v", got.Outcomes)
	}

	// Saving again overwrites the same row.
	mastery.Apply(got, srs.BoolOutcome(true), storeTime.AddDate(0, 0, 2), bloom.ConfigFor(bloom.Remember))
	if err := s.SaveCardState(ctx, got); err != nil {
		t.Fatal(err)
	}
	states, err := s.ListCardStates(ctx, "learner-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 1 {
		t.Errorf("states = %d, want 1 after upsert", len(states))
	}

	if missing, err := s.LoadCardState(ctx, "learner-1", "c2"); err != nil || missing != nil {
		t.Errorf("missing state = %+v, %v", missing, err)
	}
}

func TestLoadSrsCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedTestCards(t, s)

	for _, id := range []string{"c1", "c2"} {
		cs := mastery.NewCardState("learner-1", id, 1, bloom.Remember, "", "")
		mastery.Apply(cs, srs.BoolOutcome(true), storeTime, bloom.ConfigFor(bloom.Remember))
		if err := s.SaveCardState(ctx, cs); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.LoadSrsCounts(ctx, "learner-1", 1, []string{"c1", "c2", "c3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %d, want 2", len(counts))
	}
	for _, c := range counts {
		if c.Attempts != 1 || c.Correct != 1 {
			t.Errorf("count = %+v", c)
		}
	}
}

func testAttempt(level bloom.Level, ended time.Time, correct float64) *mission.Attempt {
	return &mission.Attempt{
		ID:           "att-" + ended.Format("20060102150405") + level.String(),
		LearnerID:    "learner-1",
		DeckID:       1,
		Level:        level,
		CardsSeen:    10,
		CardsCorrect: correct,
		ScorePct:     10 * correct,
		Mode:         mission.ModeQuiz,
		StartedAt:    ended.Add(-10 * time.Minute),
		EndedAt:      ended,
		AnsweredIDs:  []string{"c1", "c2"},
		Breakdown: map[bloom.Level]mission.TierCount{
			level: {Seen: 10, Correct: correct},
		},
	}
}

func TestAttempts_WindowAndBestScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := testAttempt(bloom.Remember, storeTime.AddDate(0, 0, -90), 9)
	recent := testAttempt(bloom.Remember, storeTime.AddDate(0, 0, -1), 7)
	other := testAttempt(bloom.Apply, storeTime, 8)
	for _, a := range []*mission.Attempt{old, recent, other} {
		if err := s.AppendAttempt(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.LoadRecentAttempts(ctx, "learner-1", 1, bloom.Remember, storeTime.AddDate(0, 0, -60))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("recent attempts = %d, want 1", len(got))
	}
	a := got[0]
	if a.CardsCorrect != 7 || !a.EndedAt.Equal(recent.EndedAt) {
		t.Errorf("attempt = %+v", a)
	}
	if len(a.AnsweredIDs) != 2 {
		t.Errorf("answered ids = %v", a.AnsweredIDs)
	}
	if tc := a.Breakdown[bloom.Remember]; tc.Seen != 10 || tc.Correct != 7 {
		t.Errorf("breakdown = %+v", a.Breakdown)
	}

	best, err := s.BestScore(ctx, "learner-1", 1, bloom.Remember)
	if err != nil {
		t.Fatal(err)
	}
	if best != 90 {
		t.Errorf("best score = %v, want 90", best)
	}

	// No attempts at a tier yields zero, not an error.
	best, err = s.BestScore(ctx, "learner-1", 1, bloom.Create)
	if err != nil || best != 0 {
		t.Errorf("empty best = %v, %v", best, err)
	}
}

func TestTierMastery_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tm := &awa.TierMastery{
		LearnerID:         "learner-1",
		DeckID:            1,
		Level:             bloom.Remember,
		CorrectnessEwma:   70,
		RetentionStrength: 0.8,
		Coverage:          0.4,
		MasteryPct:        76,
		UpdatedAt:         storeTime,
	}
	if err := s.UpsertTierMastery(ctx, tm); err != nil {
		t.Fatal(err)
	}

	tm.MasteryPct = 81
	if err := s.UpsertTierMastery(ctx, tm); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadTierMastery(ctx, "learner-1", 1, bloom.Remember)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.MasteryPct != 81 {
		t.Errorf("tier mastery = %+v", got)
	}
	if math.Abs(got.RetentionStrength-0.8) > 1e-9 {
		t.Errorf("retention = %v", got.RetentionStrength)
	}

	if missing, err := s.LoadTierMastery(ctx, "learner-1", 1, bloom.Create); err != nil || missing != nil {
		t.Errorf("missing mastery = %+v, %v", missing, err)
	}
}

func TestQuestProgress_RoundTripAndReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedTestCards(t, s)

	prog := mission.SeedProgress(map[bloom.Level]int{bloom.Remember: 2, bloom.Apply: 1})
	prog.RecordAttempt(bloom.Remember, true)
	if err := s.UpsertQuestProgress(ctx, "learner-1", 1, prog); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadQuestProgress(ctx, "learner-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("progress not found")
	}
	if tp := got[bloom.Remember]; tp.MissionsPassed != 1 || tp.TotalCards != 2 {
		t.Errorf("progress = %+v", tp)
	}

	cs := mastery.NewCardState("learner-1", "c1", 1, bloom.Remember, "", "")
	if err := s.SaveCardState(ctx, cs); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendAttempt(ctx, testAttempt(bloom.Remember, storeTime, 8)); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetDeck(ctx, "learner-1", 1); err != nil {
		t.Fatal(err)
	}

	if p, _ := s.LoadQuestProgress(ctx, "learner-1", 1); p != nil {
		t.Errorf("progress survived reset: %+v", p)
	}
	if st, _ := s.LoadCardState(ctx, "learner-1", "c1"); st != nil {
		t.Error("card state survived reset")
	}
	if best, _ := s.BestScore(ctx, "learner-1", 1, bloom.Remember); best != 0 {
		t.Errorf("attempts survived reset: best %v", best)
	}
	// Deck content is untouched by a reset.
	if ref, _ := s.FindCard(ctx, "c1"); ref == nil {
		t.Error("cards must survive reset")
	}
}

func TestAuditEvents_SequenceAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, kind := range []string{"mission_reward", "mission_reward", "deck_reset"} {
		ev := &AuditEvent{
			Kind:      kind,
			LearnerID: "learner-1",
			DeckID:    1,
			Payload:   map[string]any{"n": float64(i)},
			CreatedAt: storeTime.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendAuditEvent(ctx, ev); err != nil {
			t.Fatal(err)
		}
		if ev.Sequence == 0 {
			t.Error("sequence not assigned")
		}
	}

	events, err := s.QueryRecentAuditEvents(ctx, "learner-1", 1, "mission_reward", storeTime.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Sequence >= events[1].Sequence {
		t.Errorf("events out of sequence: %d, %d", events[0].Sequence, events[1].Sequence)
	}
	if events[1].Payload["n"] != float64(1) {
		t.Errorf("payload = %v", events[1].Payload)
	}

	// The since bound excludes older events.
	events, err = s.QueryRecentAuditEvents(ctx, "learner-1", 1, "mission_reward", storeTime.Add(30*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("windowed events = %d, want 1", len(events))
	}
}

func TestSequence_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := s.Sequence().Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if seq <= prev {
			t.Fatalf("sequence not increasing: %d after %d", seq, prev)
		}
		prev = seq
	}
}
