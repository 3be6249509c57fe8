package store

import (
	"context"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/mission"
)

// CardRef identifies a deck card and the grouping metadata the engine
// needs; card content itself is owned elsewhere.
type CardRef struct {
	CardID string      `db:"card_id"`
	DeckID int64       `db:"deck_id"`
	Level  bloom.Level `db:"bloom_level"`
	Topic  string      `db:"topic"`
	Kind   string      `db:"kind"`
}

// AuditEvent is one append-only audit log entry. The mission finalize
// path queries recent events to keep reward minting idempotent.
type AuditEvent struct {
	Sequence  int64
	Kind      string
	LearnerID string
	DeckID    int64
	Payload   map[string]any
	CreatedAt time.Time
}

// SequenceGenerator hands out the global monotonic event sequence. The
// store owns the counter; callers never keep module-level counters.
type SequenceGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// Repository is the persistence boundary of the progression engine. Every
// write is an idempotent upsert; atomicity of a single upsert is the
// repository's responsibility, the engine holds no locks of its own.
type Repository interface {
	// Deck content.
	SeedCards(ctx context.Context, refs []CardRef) error
	FindCard(ctx context.Context, cardID string) (*CardRef, error)
	ListCardsForTier(ctx context.Context, deckID int64, level bloom.Level) ([]CardRef, error)
	CountCardsByTier(ctx context.Context, deckID int64) (map[bloom.Level]int, error)

	// Per-card mastery state.
	LoadCardState(ctx context.Context, learnerID, cardID string) (*mastery.CardState, error)
	SaveCardState(ctx context.Context, cs *mastery.CardState) error
	ListCardStates(ctx context.Context, learnerID string, deckID int64) ([]*mastery.CardState, error)
	LoadSrsCounts(ctx context.Context, learnerID string, deckID int64, cardIDs []string) ([]awa.SrsCount, error)

	// Mission history.
	AppendAttempt(ctx context.Context, a *mission.Attempt) error
	LoadRecentAttempts(ctx context.Context, learnerID string, deckID int64, level bloom.Level, since time.Time) ([]mission.Attempt, error)
	BestScore(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (float64, error)

	// Persisted tier mastery.
	LoadTierMastery(ctx context.Context, learnerID string, deckID int64, level bloom.Level) (*awa.TierMastery, error)
	UpsertTierMastery(ctx context.Context, tm *awa.TierMastery) error

	// Quest progress.
	LoadQuestProgress(ctx context.Context, learnerID string, deckID int64) (mission.Progress, error)
	UpsertQuestProgress(ctx context.Context, learnerID string, deckID int64, p mission.Progress) error

	// Audit log.
	AppendAuditEvent(ctx context.Context, ev *AuditEvent) error
	QueryRecentAuditEvents(ctx context.Context, learnerID string, deckID int64, kind string, since time.Time) ([]AuditEvent, error)

	// ResetDeck deletes all missions, card states, and progress for a
	// learner×deck. Callers re-seed progress afterwards.
	ResetDeck(ctx context.Context, learnerID string, deckID int64) error
}
