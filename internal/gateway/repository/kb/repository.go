// Package kb persists knowledge-base sources and the fixed-size text chunks
// extracted from them for full-text retrieval.
package kb

import (
	"context"
	"errors"
	"time"
)

const (
	StatusPending  = "pending"
	StatusIngested = "ingested"
)

// Source is a registered URL, scoped to an org.
type Source struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Chunk is one fixed-size slice of a source's extracted text.
type Chunk struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	URL      string `json:"url"`
	Text     string `json:"text"`
}

type Store interface {
	CreateSource(ctx context.Context, src *Source) error
	GetSource(ctx context.Context, id string) (*Source, error)
	MarkIngested(ctx context.Context, id string) error
	InsertChunks(ctx context.Context, chunks []Chunk) error
	// Search runs a plain-text query over chunks belonging to the org's
	// sources, returning at most limit rows.
	Search(ctx context.Context, orgID, query string, limit int) ([]Chunk, error)
}

var ErrNotFound = errors.New("kb source not found")
