// Package state is the local SQLite store for conversational state: open
// numeric-reply prompts, the idempotent message log, and small key/value
// settings. Remote business data never lives here.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Pending-reply lifecycle statuses.
const (
	PendingOpen      = "open"
	PendingCompleted = "completed"
	PendingExpired   = "expired"
	PendingCancelled = "cancelled"
)

// Message directions for the idempotency log.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// DB is the SQLite-backed state store.
type DB struct {
	db   *sql.DB
	path string
}

// OpenDB opens (or creates) the state database under dataDir.
func OpenDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "balcao.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Single connection for writes, WAL allows concurrent reads
	db.SetMaxOpenConns(2)

	s := &DB{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *DB) migrate() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS pending_replies (
		id          TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		sender      TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'sale_amount',
		context     TEXT,
		status      TEXT NOT NULL DEFAULT 'open',
		created_at  TEXT NOT NULL,
		resolved_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_pending_open
		ON pending_replies(merchant_id, sender, status);

	CREATE TABLE IF NOT EXISTS message_log (
		idempotency_key TEXT PRIMARY KEY,
		merchant_id     TEXT NOT NULL,
		direction       TEXT NOT NULL,
		sender          TEXT NOT NULL,
		body            TEXT,
		trace_id        TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_message_log_merchant
		ON message_log(merchant_id, created_at);

	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// --- Pending replies ---

// PendingReply is an open prompt waiting for a bare-number answer, e.g. a
// sale-amount question sent after an appointment reminder.
type PendingReply struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Sender     string `json:"sender"`
	Kind       string `json:"kind"`
	Context    string `json:"context,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

// Age reports how long ago the prompt was created.
func (p *PendingReply) Age(now time.Time) time.Duration {
	created, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return 0
	}
	return now.Sub(created)
}

// CreatePendingReply opens a new prompt for (merchant, sender). Any prior
// open prompt for the same pair is cancelled first: at most one question can
// be awaiting a numeric answer at a time.
func (s *DB) CreatePendingReply(id, merchantID, sender, kind, context string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	_, err = tx.Exec(
		`UPDATE pending_replies SET status = ?, resolved_at = ?
		 WHERE merchant_id = ? AND sender = ? AND status = ?`,
		PendingCancelled, now, merchantID, sender, PendingOpen,
	)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO pending_replies (id, merchant_id, sender, kind, context, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, merchantID, sender, kind, context, PendingOpen, now,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindOpenPendingReply returns the open prompt for (merchant, sender), or
// (nil, nil) when there is none.
func (s *DB) FindOpenPendingReply(merchantID, sender string) (*PendingReply, error) {
	row := s.db.QueryRow(
		`SELECT id, merchant_id, sender, kind, COALESCE(context, ''), status, created_at, COALESCE(resolved_at, '')
		 FROM pending_replies
		 WHERE merchant_id = ? AND sender = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`,
		merchantID, sender, PendingOpen,
	)
	var p PendingReply
	err := row.Scan(&p.ID, &p.MerchantID, &p.Sender, &p.Kind, &p.Context, &p.Status, &p.CreatedAt, &p.ResolvedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ResolvePendingReply moves a prompt to a terminal status.
func (s *DB) ResolvePendingReply(id, status string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`UPDATE pending_replies SET status = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		status, now, id, PendingOpen,
	)
	return err
}

// ExpirePendingReplies marks every open prompt created before cutoff as
// expired and returns how many were affected.
func (s *DB) ExpirePendingReplies(cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(
		`UPDATE pending_replies SET status = ?, resolved_at = ?
		 WHERE status = ? AND created_at < ?`,
		PendingExpired, now, PendingOpen, cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPendingReplies returns prompts with the given status, newest first.
func (s *DB) ListPendingReplies(status string, limit int) ([]PendingReply, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, merchant_id, sender, kind, COALESCE(context, ''), status, created_at, COALESCE(resolved_at, '')
		 FROM pending_replies WHERE status = ?
		 ORDER BY created_at DESC LIMIT ?`,
		status, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingReply
	for rows.Next() {
		var p PendingReply
		if err := rows.Scan(&p.ID, &p.MerchantID, &p.Sender, &p.Kind, &p.Context, &p.Status, &p.CreatedAt, &p.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Message log ---

// LogMessage records one message exactly once under its idempotency key.
// The second and later attempts for the same key report inserted=false; the
// caller uses that to drop duplicate webhook deliveries.
func (s *DB) LogMessage(key, merchantID, direction, sender, body, traceID string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO message_log (idempotency_key, merchant_id, direction, sender, body, trace_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, merchantID, direction, sender, body, traceID, now,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MessageCount reports how many messages are logged for a merchant.
func (s *DB) MessageCount(merchantID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM message_log WHERE merchant_id = ?`, merchantID,
	).Scan(&count)
	return count, err
}

// --- KV (general purpose) ---

func (s *DB) SetKV(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (s *DB) GetKV(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	return value, err
}

// --- Lifecycle ---

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) Raw() *sql.DB {
	return s.db
}
