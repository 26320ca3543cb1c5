package run

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
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
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    version_id TEXT NOT NULL,
    model_name TEXT NOT NULL,
    provider TEXT NOT NULL DEFAULT 'openrouter',
    status TEXT NOT NULL DEFAULT 'pending',
    input_json JSONB,
    output_json JSONB,
    error TEXT NOT NULL DEFAULT '',
    finished_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_runs_version_id ON runs(version_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Create(ctx context.Context, r *Run) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if r == nil {
		return fmt.Errorf("run is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	var inputJSON []byte
	if r.InputJSON != nil {
		b, err := json.Marshal(r.InputJSON)
		if err != nil {
			return fmt.Errorf("encode input_json: %w", err)
		}
		inputJSON = b
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, project_id, version_id, model_name, provider, status, input_json, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, r.ID, r.ProjectID, r.VersionID, r.ModelName, r.Provider, r.Status, inputJSON, r.CreatedAt)
	return err
}

func (s *PostgresStore) MarkDone(ctx context.Context, id string, output json.RawMessage, finishedAt time.Time) error {
	return s.finish(ctx, id, StatusDone, []byte(output), "", finishedAt)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id string, detail string, finishedAt time.Time) error {
	return s.finish(ctx, id, StatusFailed, nil, detail, finishedAt)
}

// finish transitions a pending run to a terminal state. The status guard keeps
// terminal rows immutable.
func (s *PostgresStore) finish(ctx context.Context, id, status string, output []byte, detail string, finishedAt time.Time) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE runs SET status=$1, output_json=$2, error=$3, finished_at=$4
WHERE id=$5 AND status=$6
`, status, output, detail, finishedAt, id, StatusPending)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Run, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var (
		r          Run
		inputJSON  []byte
		outputJSON []byte
		finished   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, project_id, version_id, model_name, provider, status, input_json, output_json, error, finished_at, created_at
FROM runs WHERE id=$1
`, id).Scan(&r.ID, &r.ProjectID, &r.VersionID, &r.ModelName, &r.Provider, &r.Status,
		&inputJSON, &outputJSON, &r.Error, &finished, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(inputJSON) > 0 {
		if err := json.Unmarshal(inputJSON, &r.InputJSON); err != nil {
			return nil, fmt.Errorf("decode input_json: %w", err)
		}
	}
	if len(outputJSON) > 0 {
		r.OutputJSON = json.RawMessage(outputJSON)
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}
