// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store persists sessions, chat messages, generated websites and
// deployment records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/fileset"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL,
	last_active TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS websites (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL REFERENCES sessions(id),
	prompt        TEXT NOT NULL,
	files         TEXT NOT NULL,
	used_fallback INTEGER NOT NULL DEFAULT 0,
	site_url      TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_websites_session ON websites(session_id, created_at);

CREATE TABLE IF NOT EXISTS deployments (
	site_id    TEXT PRIMARY KEY,
	site_name  TEXT NOT NULL,
	url        TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deployments_created ON deployments(created_at);
`

// Session is one conversation scope. Websites and messages hang off it.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// Message is one chat turn inside a session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Website is one persisted generation result.
type Website struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	Prompt       string          `json:"prompt"`
	Files        fileset.FileSet `json:"files"`
	UsedFallback bool            `json:"used_fallback"`
	SiteURL      string          `json:"site_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store wraps the SQLite database. It also implements deploy.RecordStore.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (creating if needed) the database at path and applies the
// schema.
func New(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("store initialized", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies database liveness, used by the health checker.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// CreateSession inserts a new session with a fresh UUID.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, LastActive: now}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, last_active) VALUES (?, ?, ?)`,
		sess.ID, sess.CreatedAt, sess.LastActive)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// GetSession fetches a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, last_active FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.CreatedAt, &sess.LastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// TouchSession bumps last_active.
func (s *Store) TouchSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_active = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMessage appends a chat turn to a session.
func (s *Store) AddMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	msg := &Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	msg.ID, _ = res.LastInsertId()
	return msg, nil
}

// ListMessages returns a session's messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM messages WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SaveWebsite persists a generation result and assigns it an ID.
func (s *Store) SaveWebsite(ctx context.Context, w *Website) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	files, err := json.Marshal(w.Files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO websites (id, session_id, prompt, files, used_fallback, site_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.SessionID, w.Prompt, string(files), w.UsedFallback, w.SiteURL, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("save website: %w", err)
	}
	return nil
}

// LatestWebsite returns the most recent website for a session.
func (s *Store) LatestWebsite(ctx context.Context, sessionID string) (*Website, error) {
	var (
		w     Website
		files string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, prompt, files, used_fallback, site_url, created_at
		 FROM websites WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, sessionID).
		Scan(&w.ID, &w.SessionID, &w.Prompt, &files, &w.UsedFallback, &w.SiteURL, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest website: %w", err)
	}
	if err := json.Unmarshal([]byte(files), &w.Files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	w.Files = w.Files.Normalize()
	return &w, nil
}

// AddDeployment records a deployed site for future quota cleanup.
func (s *Store) AddDeployment(ctx context.Context, rec deploy.DeploymentRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO deployments (site_id, site_name, url, created_at) VALUES (?, ?, ?, ?)`,
		rec.SiteID, rec.SiteName, rec.URL, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("add deployment: %w", err)
	}
	return nil
}

// OldestDeployments returns up to n records, oldest first.
func (s *Store) OldestDeployments(ctx context.Context, n int) ([]deploy.DeploymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT site_id, site_name, url, created_at FROM deployments ORDER BY created_at LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("oldest deployments: %w", err)
	}
	defer rows.Close()

	var recs []deploy.DeploymentRecord
	for rows.Next() {
		var r deploy.DeploymentRecord
		if err := rows.Scan(&r.SiteID, &r.SiteName, &r.URL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListDeployments returns every record, newest first. Used by the admin CLI.
func (s *Store) ListDeployments(ctx context.Context) ([]deploy.DeploymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT site_id, site_name, url, created_at FROM deployments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	defer rows.Close()

	var recs []deploy.DeploymentRecord
	for rows.Next() {
		var r deploy.DeploymentRecord
		if err := rows.Scan(&r.SiteID, &r.SiteName, &r.URL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteDeployment drops a record after its site has been retired.
func (s *Store) DeleteDeployment(ctx context.Context, siteID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deployments WHERE site_id = ?`, siteID)
	if err != nil {
		return fmt.Errorf("delete deployment: %w", err)
	}
	return nil
}
