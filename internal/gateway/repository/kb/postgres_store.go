package kb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

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
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS kb_sources (
    id TEXT PRIMARY KEY,
    org_id TEXT NOT NULL,
    url TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS kb_chunks (
    id TEXT PRIMARY KEY,
    source_id TEXT NOT NULL,
    url TEXT NOT NULL,
    text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_kb_chunks_source_id ON kb_chunks(source_id);
CREATE INDEX IF NOT EXISTS idx_kb_chunks_text_fts ON kb_chunks USING GIN (to_tsvector('english', text));
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) CreateSource(ctx context.Context, src *Source) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if src == nil {
		return fmt.Errorf("source is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kb_sources (id, org_id, url, status, created_at)
VALUES ($1, $2, $3, $4, $5)
`, src.ID, src.OrgID, src.URL, src.Status, src.CreatedAt)
	return err
}

func (s *PostgresStore) GetSource(ctx context.Context, id string) (*Source, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var src Source
	err := s.db.QueryRowContext(ctx, `
SELECT id, org_id, url, status, created_at FROM kb_sources WHERE id=$1
`, id).Scan(&src.ID, &src.OrgID, &src.URL, &src.Status, &src.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *PostgresStore) MarkIngested(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE kb_sources SET status=$1 WHERE id=$2`, StatusIngested, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertChunks(ctx context.Context, chunks []Chunk) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO kb_chunks (id, source_id, url, text) VALUES ($1, $2, $3, $4)
`, c.ID, c.SourceID, c.URL, c.Text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) Search(ctx context.Context, orgID, query string, limit int) ([]Chunk, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if limit <= 0 {
		limit = 8
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.source_id, c.url, c.text FROM kb_chunks c
WHERE c.source_id IN (SELECT id FROM kb_sources WHERE org_id = $1)
AND to_tsvector('english', c.text) @@ plainto_tsquery('english', $2)
LIMIT $3
`, orgID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.SourceID, &c.URL, &c.Text); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
