package style

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error

	// slug lookups sit on every chat request; presets are immutable reference
	// data, so a small LRU in front of the table is safe.
	slugCache *lru.Cache[string, Preset]
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	cache, err := lru.New[string, Preset](256)
	if err != nil {
		cache = nil
	}
	return &PostgresStore{db: db, slugCache: cache}
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS style_presets (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    tone_sys TEXT NOT NULL DEFAULT '',
    params_json JSONB
);
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    style_preset_id TEXT
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) BySlug(ctx context.Context, slug string) (*Preset, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrNotFound
	}
	if s.slugCache != nil {
		if p, ok := s.slugCache.Get(slug); ok {
			return &p, nil
		}
	}
	p, err := s.queryOne(ctx, `SELECT id, slug, name, tone_sys, params_json FROM style_presets WHERE slug=$1`, slug)
	if err != nil {
		return nil, err
	}
	if s.slugCache != nil {
		s.slugCache.Add(slug, *p)
	}
	return p, nil
}

func (s *PostgresStore) ByID(ctx context.Context, id string) (*Preset, error) {
	return s.queryOne(ctx, `SELECT id, slug, name, tone_sys, params_json FROM style_presets WHERE id=$1`, id)
}

func (s *PostgresStore) queryOne(ctx context.Context, query, arg string) (*Preset, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var (
		p          Preset
		paramsJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&p.ID, &p.Slug, &p.Name, &p.ToneSys, &paramsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &p.Params); err != nil {
			return nil, fmt.Errorf("decode params_json: %w", err)
		}
	}
	return &p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Preset, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, name, tone_sys, params_json FROM style_presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Preset
	for rows.Next() {
		var (
			p          Preset
			paramsJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.ToneSys, &paramsJSON); err != nil {
			return nil, err
		}
		if len(paramsJSON) > 0 {
			if err := json.Unmarshal(paramsJSON, &p.Params); err != nil {
				return nil, fmt.Errorf("decode params_json: %w", err)
			}
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (s *PostgresStore) Upsert(ctx context.Context, p *Preset) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if p == nil || strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("preset slug is required")
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(p.Params)
	if err != nil {
		return fmt.Errorf("encode params_json: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO style_presets (id, slug, name, tone_sys, params_json)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (slug)
DO UPDATE SET name=EXCLUDED.name, tone_sys=EXCLUDED.tone_sys, params_json=EXCLUDED.params_json
`, p.ID, p.Slug, p.Name, p.ToneSys, paramsJSON)
	if err == nil && s.slugCache != nil {
		s.slugCache.Remove(p.Slug)
	}
	return err
}

func (s *PostgresStore) PinStyle(ctx context.Context, conversationID, projectID, presetID string) (*Conversation, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO conversations (id, project_id, style_preset_id)
VALUES ($1, $2, $3)
ON CONFLICT (id)
DO UPDATE SET style_preset_id=EXCLUDED.style_preset_id
`, conversationID, projectID, presetID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, conversationID)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Conversation, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var (
		c      Conversation
		preset sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, project_id, style_preset_id FROM conversations WHERE id=$1`, id).
		Scan(&c.ID, &c.ProjectID, &preset)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.StylePresetID = preset.String
	return &c, nil
}
