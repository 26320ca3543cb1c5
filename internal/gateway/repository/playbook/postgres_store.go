package playbook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const searchLimit = 20

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		// tags_text mirrors the tags array as a plain string so the text
		// vector can cover it without an array_to_string per row scan.
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS playbooks (
    id TEXT PRIMARY KEY,
    org_id TEXT NOT NULL,
    title TEXT NOT NULL,
    tags_json JSONB,
    tags_text TEXT NOT NULL DEFAULT '',
    body_md TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_playbooks_fts ON playbooks
    USING GIN (to_tsvector('english', title || ' ' || tags_text || ' ' || body_md));
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Create(ctx context.Context, p *Playbook) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if p == nil {
		return fmt.Errorf("playbook is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO playbooks (id, org_id, title, tags_json, tags_text, body_md, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, p.ID, p.OrgID, p.Title, tagsJSON, strings.Join(p.Tags, " "), p.BodyMD, p.CreatedAt)
	return err
}

func (s *PostgresStore) Search(ctx context.Context, query string) ([]Playbook, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, org_id, title, tags_json, body_md, created_at FROM playbooks
WHERE to_tsvector('english', title || ' ' || tags_text || ' ' || body_md)
@@ plainto_tsquery('english', $1)
ORDER BY created_at DESC LIMIT $2
`, query, searchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Playbook
	for rows.Next() {
		var (
			p        Playbook
			tagsJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Title, &tagsJSON, &p.BodyMD, &p.CreatedAt); err != nil {
			return nil, err
		}
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
				return nil, fmt.Errorf("decode tags: %w", err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
