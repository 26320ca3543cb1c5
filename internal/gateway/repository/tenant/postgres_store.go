package tenant

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
CREATE TABLE IF NOT EXISTS orgs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    org_id TEXT NOT NULL,
    name TEXT NOT NULL
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) EnsureOrg(ctx context.Context, org *Org) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if org == nil {
		return fmt.Errorf("org is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO orgs (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING
`, org.ID, org.Name)
	return err
}

func (s *PostgresStore) EnsureProject(ctx context.Context, p *Project) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if p == nil {
		return fmt.Errorf("project is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO projects (id, org_id, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING
`, p.ID, p.OrgID, p.Name)
	return err
}
