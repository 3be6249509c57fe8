package store

import "github.com/jmoiron/sqlx"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS card (
		card_id     TEXT NOT NULL,
		deck_id     INTEGER NOT NULL,
		bloom_level INTEGER NOT NULL,
		topic       TEXT NOT NULL DEFAULT '',
		kind        TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (deck_id, card_id)
	)`,
	`CREATE TABLE IF NOT EXISTS card_state (
		learner_id      TEXT NOT NULL,
		card_id         TEXT NOT NULL,
		deck_id         INTEGER NOT NULL,
		bloom_level     INTEGER NOT NULL,
		topic           TEXT NOT NULL DEFAULT '',
		kind            TEXT NOT NULL DEFAULT '',
		ease            REAL NOT NULL,
		repetitions     INTEGER NOT NULL,
		interval_days   INTEGER NOT NULL,
		due_at          TEXT NOT NULL DEFAULT '',
		attempts        INTEGER NOT NULL,
		correct         REAL NOT NULL,
		last_review     TEXT NOT NULL DEFAULT '',
		history         TEXT NOT NULL DEFAULT '[]',
		spacing         TEXT NOT NULL DEFAULT '{}',
		outcomes        TEXT NOT NULL DEFAULT '{}',
		confidence_ewma REAL NOT NULL,
		retention       REAL NOT NULL,
		momentum        REAL NOT NULL,
		confidence      REAL NOT NULL,
		mastery         REAL NOT NULL,
		updated_at      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (learner_id, card_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_card_state_deck ON card_state (learner_id, deck_id)`,
	`CREATE TABLE IF NOT EXISTS mission_attempt (
		id            TEXT PRIMARY KEY,
		learner_id    TEXT NOT NULL,
		deck_id       INTEGER NOT NULL,
		bloom_level   INTEGER NOT NULL,
		sequence      INTEGER NOT NULL DEFAULT 0,
		seed          INTEGER NOT NULL DEFAULT 0,
		card_ids      TEXT NOT NULL DEFAULT '[]',
		answered_ids  TEXT NOT NULL DEFAULT '[]',
		cards_seen    INTEGER NOT NULL,
		cards_correct REAL NOT NULL,
		score_pct     REAL NOT NULL,
		mode          TEXT NOT NULL,
		started_at    TEXT NOT NULL DEFAULT '',
		ended_at      TEXT NOT NULL DEFAULT '',
		breakdown     TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attempt_tier ON mission_attempt (learner_id, deck_id, bloom_level, ended_at)`,
	`CREATE TABLE IF NOT EXISTS tier_mastery (
		learner_id         TEXT NOT NULL,
		deck_id            INTEGER NOT NULL,
		bloom_level        INTEGER NOT NULL,
		correctness_ewma   REAL NOT NULL,
		retention_strength REAL NOT NULL,
		coverage           REAL NOT NULL,
		mastery_pct        INTEGER NOT NULL,
		updated_at         TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (learner_id, deck_id, bloom_level)
	)`,
	`CREATE TABLE IF NOT EXISTS quest_progress (
		learner_id TEXT NOT NULL,
		deck_id    INTEGER NOT NULL,
		tiers      TEXT NOT NULL DEFAULT '{}',
		updated_at TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (learner_id, deck_id)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_event (
		sequence   INTEGER PRIMARY KEY,
		kind       TEXT NOT NULL,
		learner_id TEXT NOT NULL,
		deck_id    INTEGER NOT NULL,
		payload    TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_event (learner_id, deck_id, kind, created_at)`,
}

func migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
