package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bloomdeck/bloomdeck/internal/awa"
	"github.com/bloomdeck/bloomdeck/internal/bloom"
	"github.com/bloomdeck/bloomdeck/internal/mastery"
	"github.com/bloomdeck/bloomdeck/internal/mission"
	"github.com/bloomdeck/bloomdeck/internal/srs"
)

// Memory is an in-process Repository used by tests and fixtures. It copies
// records on the way in and out so callers can't alias internal state, and
// it owns its own sequence generator rather than a module-level counter.
type Memory struct {
	mu sync.Mutex

	cards      map[string]CardRef                // cardID
	cardStates map[[2]string]*mastery.CardState  // learner, card
	attempts   []mission.Attempt
	masteries  map[string]*awa.TierMastery       // learner|deck|level
	progress   map[[2]string]mission.Progress    // learner, deck key
	audits     []AuditEvent

	seq memorySequence
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		cards:      make(map[string]CardRef),
		cardStates: make(map[[2]string]*mastery.CardState),
		masteries:  make(map[string]*awa.TierMastery),
		progress:   make(map[[2]string]mission.Progress),
	}
}

var _ Repository = (*Memory)(nil)

// Sequence exposes the repository's sequence generator.
func (m *Memory) Sequence() SequenceGenerator { return &m.seq }

func deckKey(deckID int64) string {
	return strconv.FormatInt(deckID, 10)
}

func tierKey(learnerID string, deckID int64, level bloom.Level) string {
	return learnerID + "|" + deckKey(deckID) + "|" + level.String()
}

func (m *Memory) SeedCards(_ context.Context, refs []CardRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ref := range refs {
		m.cards[ref.CardID] = ref
	}
	return nil
}

func (m *Memory) FindCard(_ context.Context, cardID string) (*CardRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref, ok := m.cards[cardID]; ok {
		return &ref, nil
	}
	return nil, nil
}

func (m *Memory) ListCardsForTier(_ context.Context, deckID int64, level bloom.Level) ([]CardRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var refs []CardRef
	for _, ref := range m.cards {
		if ref.DeckID == deckID && ref.Level == level {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].CardID < refs[j].CardID })
	return refs, nil
}

func (m *Memory) CountCardsByTier(_ context.Context, deckID int64) (map[bloom.Level]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[bloom.Level]int)
	for _, ref := range m.cards {
		if ref.DeckID == deckID {
			counts[ref.Level]++
		}
	}
	return counts, nil
}

func (m *Memory) LoadCardState(_ context.Context, learnerID, cardID string) (*mastery.CardState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.cardStates[[2]string{learnerID, cardID}]
	if !ok {
		return nil, nil
	}
	return copyCardState(cs), nil
}

func (m *Memory) SaveCardState(_ context.Context, cs *mastery.CardState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cardStates[[2]string{cs.LearnerID, cs.CardID}] = copyCardState(cs)
	return nil
}

func (m *Memory) ListCardStates(_ context.Context, learnerID string, deckID int64) ([]*mastery.CardState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*mastery.CardState
	for key, cs := range m.cardStates {
		if key[0] == learnerID && cs.DeckID == deckID {
			out = append(out, copyCardState(cs))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (m *Memory) LoadSrsCounts(_ context.Context, learnerID string, deckID int64, cardIDs []string) ([]awa.SrsCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts []awa.SrsCount
	for _, id := range cardIDs {
		cs, ok := m.cardStates[[2]string{learnerID, id}]
		if !ok || cs.DeckID != deckID {
			continue
		}
		counts = append(counts, awa.SrsCount{CardID: id, Attempts: cs.Srs.Attempts, Correct: cs.Srs.Correct})
	}
	return counts, nil
}

func (m *Memory) AppendAttempt(_ context.Context, a *mission.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *Memory) LoadRecentAttempts(_ context.Context, learnerID string, deckID int64, level bloom.Level, since time.Time) ([]mission.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mission.Attempt
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.DeckID == deckID && a.Level == level && !a.EndedAt.Before(since) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.Before(out[j].EndedAt) })
	return out, nil
}

func (m *Memory) BestScore(_ context.Context, learnerID string, deckID int64, level bloom.Level) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := 0.0
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.DeckID == deckID && a.Level == level && a.ScorePct > best {
			best = a.ScorePct
		}
	}
	return best, nil
}

func (m *Memory) LoadTierMastery(_ context.Context, learnerID string, deckID int64, level bloom.Level) (*awa.TierMastery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tm, ok := m.masteries[tierKey(learnerID, deckID, level)]
	if !ok {
		return nil, nil
	}
	cp := *tm
	return &cp, nil
}

func (m *Memory) UpsertTierMastery(_ context.Context, tm *awa.TierMastery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tm
	m.masteries[tierKey(tm.LearnerID, tm.DeckID, tm.Level)] = &cp
	return nil
}

func (m *Memory) LoadQuestProgress(_ context.Context, learnerID string, deckID int64) (mission.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[[2]string{learnerID, deckKey(deckID)}]
	if !ok {
		return nil, nil
	}
	return copyProgress(p), nil
}

func (m *Memory) UpsertQuestProgress(_ context.Context, learnerID string, deckID int64, p mission.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[[2]string{learnerID, deckKey(deckID)}] = copyProgress(p)
	return nil
}

func (m *Memory) AppendAuditEvent(ctx context.Context, ev *AuditEvent) error {
	seq, err := m.seq.Next(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.Sequence = seq
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	m.audits = append(m.audits, *ev)
	return nil
}

func (m *Memory) QueryRecentAuditEvents(_ context.Context, learnerID string, deckID int64, kind string, since time.Time) ([]AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AuditEvent
	for _, ev := range m.audits {
		if ev.LearnerID == learnerID && ev.DeckID == deckID && ev.Kind == kind && !ev.CreatedAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) ResetDeck(_ context.Context, learnerID string, deckID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, cs := range m.cardStates {
		if key[0] == learnerID && cs.DeckID == deckID {
			delete(m.cardStates, key)
		}
	}
	kept := m.attempts[:0]
	for _, a := range m.attempts {
		if !(a.LearnerID == learnerID && a.DeckID == deckID) {
			kept = append(kept, a)
		}
	}
	m.attempts = kept
	for _, level := range bloom.AllLevels() {
		delete(m.masteries, tierKey(learnerID, deckID, level))
	}
	delete(m.progress, [2]string{learnerID, deckKey(deckID)})
	return nil
}

func copyCardState(cs *mastery.CardState) *mastery.CardState {
	cp := *cs
	cp.Srs.History = append([]srs.HistoryEntry(nil), cs.Srs.History...)
	return &cp
}

func copyProgress(p mission.Progress) mission.Progress {
	cp := make(mission.Progress, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}
