// Package sqlitestore implements retentionkeeper.Persistence over SQLite
// using a single connection, WAL mode, and a versioned migration table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	retentionkeeper "github.com/goblincore/retentionkeeper"
)

// Store wraps a SQLite connection for memory-item, entity, weight, and
// feedback persistence.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlitestore: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer avoids WAL contention at this scale

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)

	var version int
	s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)

	if version < 1 {
		if _, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS memory_items (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id          TEXT    NOT NULL DEFAULT '',
				conversation_id  TEXT    NOT NULL,
				turn_index       INTEGER NOT NULL,
				speaker          TEXT    NOT NULL,
				raw_score        INTEGER NOT NULL,
				adjusted_score   REAL    NOT NULL,
				retention        TEXT    NOT NULL,
				categories       TEXT    NOT NULL DEFAULT '{}',
				matched_patterns TEXT    NOT NULL DEFAULT '[]',
				reasoning        TEXT    NOT NULL DEFAULT '',
				superseded_by    TEXT,
				created_at       TEXT    NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_memory_items_conversation ON memory_items(conversation_id);
			CREATE INDEX IF NOT EXISTS idx_memory_items_user ON memory_items(user_id);

			CREATE TABLE IF NOT EXISTS entities (
				entity_id        TEXT    PRIMARY KEY,
				entity_type      TEXT    NOT NULL,
				canonical_name   TEXT    NOT NULL,
				aliases          TEXT    NOT NULL DEFAULT '[]',
				attributes       TEXT    NOT NULL DEFAULT '{}',
				first_turn       INTEGER NOT NULL,
				last_turn        INTEGER NOT NULL,
				mention_count    INTEGER NOT NULL DEFAULT 0,
				importance_score REAL    NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS user_weights (
				user_id           TEXT    NOT NULL,
				pattern_name      TEXT    NOT NULL,
				weight_adjustment REAL    NOT NULL DEFAULT 0,
				feedback_count    INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, pattern_name)
			);

			CREATE TABLE IF NOT EXISTS feedback (
				id                 INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id            TEXT    NOT NULL,
				statement          TEXT    NOT NULL,
				actual_retention   TEXT    NOT NULL,
				expected_retention TEXT    NOT NULL,
				feedback_type      TEXT    NOT NULL,
				created_at         TEXT    NOT NULL DEFAULT (datetime('now'))
			);
			CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
		`); err != nil {
			return err
		}
		s.db.Exec(`INSERT INTO schema_version (version) VALUES (1)`)
	}

	return nil
}

// LoadUserWeights implements retentionkeeper.Persistence.
func (s *Store) LoadUserWeights(ctx context.Context, userID string) ([]retentionkeeper.UserWeight, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, pattern_name, weight_adjustment, feedback_count
		FROM user_weights WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []retentionkeeper.UserWeight
	for rows.Next() {
		var w retentionkeeper.UserWeight
		if err := rows.Scan(&w.UserID, &w.PatternName, &w.WeightAdjustment, &w.FeedbackCount); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveUserWeight implements retentionkeeper.Persistence.
func (s *Store) SaveUserWeight(ctx context.Context, w retentionkeeper.UserWeight) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_weights (user_id, pattern_name, weight_adjustment, feedback_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, pattern_name) DO UPDATE SET
			weight_adjustment = excluded.weight_adjustment,
			feedback_count    = excluded.feedback_count`,
		w.UserID, w.PatternName, w.WeightAdjustment, w.FeedbackCount,
	)
	return err
}

// AppendMemoryItems implements retentionkeeper.Persistence.
func (s *Store) AppendMemoryItems(ctx context.Context, items []retentionkeeper.MemoryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memory_items
			(user_id, conversation_id, turn_index, speaker, raw_score, adjusted_score, retention, categories, matched_patterns, reasoning, superseded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		categoriesJSON, _ := json.Marshal(it.Categories)
		patternsJSON, _ := json.Marshal(it.MatchedPatterns)

		var supersededBy *string
		if it.SupersededBy != nil {
			s := fmt.Sprintf("%d:%s", it.SupersededBy.TurnIndex, it.SupersededBy.Speaker)
			supersededBy = &s
		}

		created := it.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}

		if _, err := stmt.ExecContext(ctx,
			it.UserID, it.ConversationID, it.UtteranceRef.TurnIndex, it.UtteranceRef.Speaker,
			it.RawScore, it.AdjustedScore, string(it.Retention),
			string(categoriesJSON), string(patternsJSON), it.Reasoning,
			supersededBy, created.Format("2006-01-02 15:04:05"),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// EnforceMemoryLimit deletes the oldest, lowest-scoring non-LONG_TERM items
// once a user exceeds maxItems, mirroring a simple score/age eviction order.
// LONG_TERM items are excluded from the candidate set entirely.
func (s *Store) EnforceMemoryLimit(ctx context.Context, userID string, maxItems int) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_items WHERE user_id = ?`, userID,
	).Scan(&count); err != nil {
		return 0, err
	}
	if count <= maxItems {
		return 0, nil
	}

	excess := count - maxItems
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM memory_items WHERE id IN (
			SELECT id FROM memory_items
			WHERE user_id = ? AND retention != 'LONG_TERM'
			ORDER BY adjusted_score ASC, created_at ASC
			LIMIT ?
		)`, userID, excess,
	)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

// UpsertEntities implements retentionkeeper.Persistence.
func (s *Store) UpsertEntities(ctx context.Context, entities []retentionkeeper.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (entity_id, entity_type, canonical_name, aliases, attributes, first_turn, last_turn, mention_count, importance_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			canonical_name   = excluded.canonical_name,
			aliases          = excluded.aliases,
			attributes       = excluded.attributes,
			last_turn        = excluded.last_turn,
			mention_count    = excluded.mention_count,
			importance_score = excluded.importance_score`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entities {
		aliasesJSON, _ := json.Marshal(aliasSet(e.Aliases))
		attrsJSON, _ := json.Marshal(e.Attributes)

		if _, err := stmt.ExecContext(ctx,
			e.EntityID, string(e.EntityType), e.CanonicalName,
			string(aliasesJSON), string(attrsJSON),
			e.FirstTurn, e.LastTurn, e.MentionCount, e.ImportanceScore,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AppendFeedback implements retentionkeeper.Persistence.
func (s *Store) AppendFeedback(ctx context.Context, fb retentionkeeper.FeedbackRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (user_id, statement, actual_retention, expected_retention, feedback_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fb.UserID, fb.Statement, string(fb.ActualRetention), string(fb.ExpectedRetention),
		string(fb.FeedbackType), fb.Timestamp.Format("2006-01-02 15:04:05"),
	)
	return err
}

func aliasSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
