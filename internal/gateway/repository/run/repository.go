// Package run persists replay records. A run is created pending and moves to
// exactly one terminal state (done or failed); terminal rows are never
// mutated afterwards.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Run records one invocation of the router against a pinned version.
type Run struct {
	ID         string          `json:"id"`
	ProjectID  string          `json:"projectId"`
	VersionID  string          `json:"versionId"`
	ModelName  string          `json:"modelName"`
	Provider   string          `json:"provider"`
	Status     string          `json:"status"`
	InputJSON  map[string]any  `json:"inputJson,omitempty"`
	OutputJSON json.RawMessage `json:"outputJson,omitempty"`
	Error      string          `json:"error,omitempty"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Store interface {
	Create(ctx context.Context, r *Run) error
	MarkDone(ctx context.Context, id string, output json.RawMessage, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id string, detail string, finishedAt time.Time) error
	Get(ctx context.Context, id string) (*Run, error)
}

var ErrNotFound = errors.New("run not found")
