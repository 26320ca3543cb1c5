// Package artifact persists artifacts and their version graphs.
package artifact

import (
	"context"
	"errors"
	"time"

	"workbench/internal/diff"
)

// Artifact is a named unit of produced content. After creation the
// latest-version pointer is its only mutable field.
type Artifact struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	Type            string    `json:"type"`
	Name            string    `json:"name"`
	LatestVersionID string    `json:"latestVersionId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Version is one immutable snapshot in an artifact's version graph. ParentID,
// when set, must reference a version of the same artifact; versions form a
// branch-capable tree, not a strict line.
type Version struct {
	ID          string         `json:"id"`
	ArtifactID  string         `json:"artifactId"`
	ParentID    string         `json:"parentId,omitempty"`
	Branch      string         `json:"branch"`
	ContentText string         `json:"contentText,omitempty"`
	BlobURL     string         `json:"blobUrl,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	AutoSummary string         `json:"autoSummary,omitempty"`
	Diff        *diff.Diff     `json:"diffJson,omitempty"`
	ModelName   string         `json:"modelName,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Params      map[string]any `json:"paramsJson,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Store defines operations for persisting artifacts and versions. Versions are
// append-only: rows are never updated or deleted once written.
type Store interface {
	// CreateWithFirstVersion writes the artifact, its first version, and the
	// latest-version pointer in one transaction.
	CreateWithFirstVersion(ctx context.Context, a *Artifact, v *Version) error

	// InsertVersion writes the version and repoints the owning artifact's
	// latest-version pointer in one transaction. Concurrent inserts against
	// the same artifact are last-writer-wins on the pointer; that is an
	// explicit policy, not an oversight.
	InsertVersion(ctx context.Context, v *Version) error

	GetArtifact(ctx context.Context, id string) (*Artifact, error)
	GetVersion(ctx context.Context, id string) (*Version, error)
}

var ErrNotFound = errors.New("artifact not found")
