package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type auditRow struct {
	Sequence  int64  `db:"sequence"`
	Kind      string `db:"kind"`
	LearnerID string `db:"learner_id"`
	DeckID    int64  `db:"deck_id"`
	Payload   string `db:"payload"`
	CreatedAt string `db:"created_at"`
}

// AppendAuditEvent writes one audit log entry, assigning it the next
// global sequence number.
func (s *Store) AppendAuditEvent(ctx context.Context, ev *AuditEvent) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	ev.Sequence = seq
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_event (sequence, kind, learner_id, deck_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Sequence, ev.Kind, ev.LearnerID, ev.DeckID, string(payload), formatTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// QueryRecentAuditEvents returns a learner×deck's events of one kind
// created at or after since, oldest first.
func (s *Store) QueryRecentAuditEvents(ctx context.Context, learnerID string, deckID int64, kind string, since time.Time) ([]AuditEvent, error) {
	var rows []auditRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM audit_event
		WHERE learner_id = ? AND deck_id = ? AND kind = ? AND created_at >= ?
		ORDER BY sequence`, learnerID, deckID, kind, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}

	out := make([]AuditEvent, 0, len(rows))
	for _, r := range rows {
		ev := AuditEvent{
			Sequence:  r.Sequence,
			Kind:      r.Kind,
			LearnerID: r.LearnerID,
			DeckID:    r.DeckID,
			CreatedAt: parseTime(r.CreatedAt),
		}
		if err := json.Unmarshal([]byte(r.Payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
