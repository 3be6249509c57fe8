package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/queue"
	"github.com/bloomdeck/bloomdeck/internal/srs"
	"github.com/bloomdeck/bloomdeck/internal/store"
)

var engineTime = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	repo := store.NewMemory()
	err := repo.SeedCards(context.Background(), []store.CardRef{
		{CardID: "r1", DeckID: 1, Level: bloom.Remember, Topic: "algebra", Kind: "recall"},
		{CardID: "r2", DeckID: 1, Level: bloom.Remember, Topic: "geometry", Kind: "recall"},
		{CardID: "u1", DeckID: 1, Level: bloom.Understand, Topic: "algebra", Kind: "cloze"},
	})
	require.NoError(t, err)

	svc := New(repo, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return engineTime },
	})
	return svc, repo
}

func TestRecordAnswer_CreatesState(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	cs, err := svc.RecordAnswer(ctx, "learner-1", "r1", srs.BoolOutcome(true))
	require.NoError(t, err)
	assert.Equal(t, "learner-1", cs.LearnerID)
	assert.Equal(t, bloom.Remember, cs.Level)
	assert.Equal(t, 1, cs.Srs.Attempts)
	assert.Equal(t, "algebra", cs.Topic)

	saved, err := repo.LoadCardState(ctx, "learner-1", "r1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 1, saved.Srs.Attempts)

	// A second answer advances the same record.
	cs, err = svc.RecordAnswer(ctx, "learner-1", "r1", srs.BoolOutcome(true))
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Srs.Attempts)
}

func TestRecordAnswer_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordAnswer(ctx, "", "r1", srs.BoolOutcome(true))
	var authErr *NotAuthenticatedError
	assert.ErrorAs(t, err, &authErr)

	_, err = svc.RecordAnswer(ctx, "learner-1", "ghost", srs.BoolOutcome(true))
	var verr *mission.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func testMission(correct float64) *mission.Attempt {
	return &mission.Attempt{
		LearnerID:    "learner-1",
		DeckID:       1,
		Level:        bloom.Remember,
		CardsSeen:    10,
		CardsCorrect: correct,
		Mode:         mission.ModeQuiz,
		StartedAt:    engineTime.Add(-10 * time.Minute),
		EndedAt:      engineTime,
	}
}

func TestCompleteMission_PassAndUnlock(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	res, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)

	assert.True(t, res.Passed)
	assert.InDelta(t, 80.0, res.ScorePct, 1e-9)
	assert.Equal(t, 80, res.XPAwarded)
	assert.False(t, res.RewardSkipped)

	// Both Remember cards fit one mission, so one pass clears the tier
	// and unlocks Understand.
	tp := res.Progress[bloom.Remember]
	assert.Equal(t, 1, tp.MissionsCompleted)
	assert.Equal(t, 1, tp.MissionsPassed)
	assert.True(t, tp.Cleared)
	assert.True(t, res.UnlockedNextTier)
	assert.Equal(t, bloom.Understand, res.NextTier)
	assert.Equal(t, "previous-tier-cleared", res.UnlockReason)

	// The attempt and progress were persisted.
	best, err := repo.BestScore(ctx, "learner-1", 1, bloom.Remember)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, best, 1e-9)
	prog, err := repo.LoadQuestProgress(ctx, "learner-1", 1)
	require.NoError(t, err)
	assert.True(t, prog[bloom.Remember].Cleared)

	// The best-effort recompute persisted a mastery row.
	tm, err := repo.LoadTierMastery(ctx, "learner-1", 1, bloom.Remember)
	require.NoError(t, err)
	require.NotNil(t, tm)
	assert.InDelta(t, 80.0, tm.CorrectnessEwma, 1e-9)
}

func TestCompleteMission_FailDoesNotUnlock(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.CompleteMission(context.Background(), testMission(6))
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.False(t, res.UnlockedNextTier)
	assert.Equal(t, 0, res.Progress[bloom.Remember].MissionsPassed)
	// A failed mission still earns XP for its correct cards.
	assert.Equal(t, 60, res.XPAwarded)
}

func TestCompleteMission_UnlockReportedOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// The first passing mission flips Understand from locked to unlocked.
	first, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)
	require.True(t, first.UnlockedNextTier)

	// A later mission on the same tier finds it already unlocked and
	// must not announce the unlock again.
	repeat := testMission(9)
	repeat.EndedAt = engineTime.Add(time.Hour)
	res, err := svc.CompleteMission(ctx, repeat)
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.False(t, res.UnlockedNextTier)
	assert.Empty(t, res.UnlockReason)
}

func TestCompleteMission_IdempotentFinalize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)
	assert.Equal(t, 80, first.XPAwarded)

	// Same deck, mode, and correct/total inside the window: no re-mint.
	second, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)
	assert.True(t, second.RewardSkipped)
	assert.Equal(t, 0, second.XPAwarded)

	// A different payload is a different mission and is credited.
	third, err := svc.CompleteMission(ctx, testMission(9))
	require.NoError(t, err)
	assert.False(t, third.RewardSkipped)
	assert.Equal(t, 90, third.XPAwarded)

	// Progress still advanced for the duplicate submission.
	assert.Equal(t, 1, second.Progress[bloom.Remember].TotalMissions)
}

func TestCompleteMission_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	a := testMission(8)
	a.DeckID = -4
	_, err := svc.CompleteMission(context.Background(), a)
	var verr *mission.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CompleteMission(context.Background(), nil)
	var authErr *NotAuthenticatedError
	assert.ErrorAs(t, err, &authErr)
}

// failingRepo fails tier mastery writes to exercise the best-effort path.
type failingRepo struct {
	*store.Memory
}

func (f *failingRepo) UpsertTierMastery(context.Context, *awa.TierMastery) error {
	return errors.New("disk full")
}

func TestCompleteMission_RecomputeFailureSwallowed(t *testing.T) {
	repo := &failingRepo{Memory: store.NewMemory()}
	svc := New(repo, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return engineTime },
	})

	res, err := svc.CompleteMission(context.Background(), testMission(8))
	require.NoError(t, err)
	assert.True(t, res.Passed)
}

func TestTierMastery_ComputesOnMiss(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendAttempt(ctx, testMission(7)))

	tm, err := svc.TierMastery(ctx, "learner-1", 1, bloom.Remember)
	require.NoError(t, err)
	require.NotNil(t, tm)
	assert.Equal(t, bloom.Remember, tm.Level)
	// No card states: blended mastery comes from accuracy alone.
	assert.Equal(t, 28, tm.MasteryPct)
}

func TestBuildReviewQueue(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "u1"} {
		_, err := svc.RecordAnswer(ctx, "learner-1", id, srs.BoolOutcome(false))
		require.NoError(t, err)
	}

	// Failed cards come due the next day.
	later := engineTime.AddDate(0, 0, 2)
	svcLater := New(repo, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return later },
	})

	ids, err := svcLater.BuildReviewQueue(ctx, "learner-1", 1, queue.ModeDue)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	// Topic interleaving alternates algebra and geometry.
	assert.NotEqual(t, ids[0], ids[1])

	ids, err = svcLater.BuildReviewQueue(ctx, "learner-1", 1, queue.ModeStruggle)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	_, err = svcLater.BuildReviewQueue(ctx, "", 1, queue.ModeDue)
	var authErr *NotAuthenticatedError
	assert.ErrorAs(t, err, &authErr)
}

func TestResetDeck_ReseedsProgress(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)

	require.NoError(t, svc.ResetDeck(ctx, "learner-1", 1))

	prog, err := repo.LoadQuestProgress(ctx, "learner-1", 1)
	require.NoError(t, err)
	require.NotNil(t, prog)
	tp := prog[bloom.Remember]
	assert.Equal(t, 2, tp.TotalCards)
	assert.Equal(t, 1, tp.TotalMissions)
	assert.Equal(t, 0, tp.MissionsCompleted)
	assert.False(t, tp.Cleared)
}

func TestContentChanged_Retotals(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteMission(ctx, testMission(8))
	require.NoError(t, err)

	// Grow the Remember tier past one mission cap.
	var refs []store.CardRef
	for i := 0; i < 15; i++ {
		refs = append(refs, store.CardRef{
			CardID: string(rune('A' + i)),
			DeckID: 1,
			Level:  bloom.Remember,
		})
	}
	require.NoError(t, repo.SeedCards(ctx, refs))

	require.NoError(t, svc.ContentChanged(ctx, "learner-1", 1))

	prog, err := repo.LoadQuestProgress(ctx, "learner-1", 1)
	require.NoError(t, err)
	tp := prog[bloom.Remember]
	assert.Equal(t, 17, tp.TotalCards)
	assert.Equal(t, 2, tp.TotalMissions)
	// Monotonic counters survive the retotal.
	assert.Equal(t, 1, tp.MissionsCompleted)
}
