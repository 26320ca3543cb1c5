// Package playbook persists reusable markdown snippets with full-text search
// over their title, tags, and body.
package playbook

import (
	"context"
	"time"
)

type Playbook struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	BodyMD    string    `json:"bodyMd"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Create(ctx context.Context, p *Playbook) error
	// Search runs a plain-text query over title+tags+body, newest first,
	// capped at 20 rows.
	Search(ctx context.Context, query string) ([]Playbook, error)
}
