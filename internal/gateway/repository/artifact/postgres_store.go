package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"workbench/internal/diff"
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
CREATE TABLE IF NOT EXISTS artifacts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    latest_version_id TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS artifact_versions (
    id TEXT PRIMARY KEY,
    artifact_id TEXT NOT NULL,
    parent_id TEXT,
    branch TEXT NOT NULL DEFAULT 'main',
    content_text TEXT NOT NULL DEFAULT '',
    blob_url TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    auto_summary TEXT NOT NULL DEFAULT '',
    diff_json JSONB,
    model_name TEXT NOT NULL DEFAULT '',
    provider TEXT NOT NULL DEFAULT '',
    params_json JSONB,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_artifact_versions_artifact ON artifact_versions(artifact_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) CreateWithFirstVersion(ctx context.Context, a *Artifact, v *Version) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if a == nil || v == nil {
		return fmt.Errorf("artifact and version are required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	diffJSON, paramsJSON, err := encodeVersionJSON(v)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO artifacts (id, project_id, type, name, latest_version_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, a.ID, a.ProjectID, a.Type, a.Name, v.ID, a.CreatedAt); err != nil {
		return err
	}
	if err := insertVersionTx(ctx, tx, v, diffJSON, paramsJSON); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.LatestVersionID = v.ID
	return nil
}

func (s *PostgresStore) InsertVersion(ctx context.Context, v *Version) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if v == nil {
		return fmt.Errorf("version is required")
	}
	if strings.TrimSpace(v.ArtifactID) == "" {
		return fmt.Errorf("artifact_id is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	diffJSON, paramsJSON, err := encodeVersionJSON(v)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := insertVersionTx(ctx, tx, v, diffJSON, paramsJSON); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE artifacts SET latest_version_id=$1 WHERE id=$2`, v.ID, v.ArtifactID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func insertVersionTx(ctx context.Context, tx *sql.Tx, v *Version, diffJSON, paramsJSON []byte) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO artifact_versions
    (id, artifact_id, parent_id, branch, content_text, blob_url, summary, auto_summary, diff_json, model_name, provider, params_json, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`, v.ID, v.ArtifactID, nullable(v.ParentID), v.Branch, v.ContentText, v.BlobURL,
		v.Summary, v.AutoSummary, diffJSON, v.ModelName, v.Provider, paramsJSON, v.CreatedAt)
	return err
}

func (s *PostgresStore) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var (
		a      Artifact
		latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, project_id, type, name, latest_version_id, created_at
FROM artifacts WHERE id=$1
`, id).Scan(&a.ID, &a.ProjectID, &a.Type, &a.Name, &latest, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.LatestVersionID = latest.String
	return &a, nil
}

func (s *PostgresStore) GetVersion(ctx context.Context, id string) (*Version, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var (
		v          Version
		parent     sql.NullString
		diffJSON   []byte
		paramsJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, artifact_id, parent_id, branch, content_text, blob_url, summary, auto_summary, diff_json, model_name, provider, params_json, created_at
FROM artifact_versions WHERE id=$1
`, id).Scan(&v.ID, &v.ArtifactID, &parent, &v.Branch, &v.ContentText, &v.BlobURL,
		&v.Summary, &v.AutoSummary, &diffJSON, &v.ModelName, &v.Provider, &paramsJSON, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.ParentID = parent.String
	if len(diffJSON) > 0 {
		var d diff.Diff
		if err := json.Unmarshal(diffJSON, &d); err != nil {
			return nil, fmt.Errorf("decode diff_json: %w", err)
		}
		v.Diff = &d
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &v.Params); err != nil {
			return nil, fmt.Errorf("decode params_json: %w", err)
		}
	}
	return &v, nil
}

func encodeVersionJSON(v *Version) (diffJSON, paramsJSON []byte, err error) {
	if v.Diff != nil {
		diffJSON, err = json.Marshal(v.Diff)
		if err != nil {
			return nil, nil, fmt.Errorf("encode diff_json: %w", err)
		}
	}
	if v.Params != nil {
		paramsJSON, err = json.Marshal(v.Params)
		if err != nil {
			return nil, nil, fmt.Errorf("encode params_json: %w", err)
		}
	}
	return diffJSON, paramsJSON, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
