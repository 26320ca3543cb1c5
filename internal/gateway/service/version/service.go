// Package version orchestrates artifact version creation and replay: parent
// diffing, changelog summarization, blob offload, and run records.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"workbench/internal/diff"
	"workbench/internal/gateway/repository/artifact"
	"workbench/internal/gateway/repository/blob"
	"workbench/internal/gateway/repository/run"
	llmclient "workbench/internal/llmClient"
)

var (
	// ErrNoModelPinned is returned when a replay is requested for a version
	// authored without model metadata.
	ErrNoModelPinned = errors.New("no model pinned")
	// ErrParentMismatch is returned when the requested parent version belongs
	// to a different artifact.
	ErrParentMismatch = errors.New("parent version belongs to a different artifact")
)

// Summarizer produces a changelog for a version edit.
type Summarizer interface {
	AutoSummarize(ctx context.Context, prev, next, notes string) (string, error)
}

// Chatter issues one call to the upstream router.
type Chatter interface {
	Chat(ctx context.Context, req llmclient.ChatRequest) (*http.Response, error)
}

type Service struct {
	artifacts  artifact.Store
	runs       run.Store
	blobs      blob.Store
	summarizer Summarizer
	router     Chatter
}

func New(artifacts artifact.Store, runs run.Store, blobs blob.Store, summarizer Summarizer, router Chatter) *Service {
	return &Service{
		artifacts:  artifacts,
		runs:       runs,
		blobs:      blobs,
		summarizer: summarizer,
		router:     router,
	}
}

type CreateArtifactInput struct {
	ProjectID   string
	Type        string
	Name        string
	ContentText string
	BlobURL     string
	BlobData    []byte
	Summary     string
}

// CreateArtifact writes a new artifact together with its first version. The
// artifact row, version row, and latest-version pointer land in one
// transaction, so a fault can never leave an artifact without a version.
func (s *Service) CreateArtifact(ctx context.Context, in CreateArtifactInput) (*artifact.Artifact, *artifact.Version, error) {
	now := time.Now().UTC()
	a := &artifact.Artifact{
		ID:        uuid.NewString(),
		ProjectID: in.ProjectID,
		Type:      in.Type,
		Name:      in.Name,
		CreatedAt: now,
	}
	v := &artifact.Version{
		ID:          uuid.NewString(),
		ArtifactID:  a.ID,
		Branch:      "main",
		ContentText: in.ContentText,
		BlobURL:     in.BlobURL,
		Summary:     in.Summary,
		CreatedAt:   now,
	}
	if err := s.offloadBlob(ctx, v, in.BlobData); err != nil {
		return nil, nil, err
	}
	if err := s.artifacts.CreateWithFirstVersion(ctx, a, v); err != nil {
		return nil, nil, err
	}
	return a, v, nil
}

type CreateVersionInput struct {
	ArtifactID      string
	ParentVersionID string
	Branch          string
	ContentText     string
	BlobURL         string
	BlobData        []byte
	Summary         string
	ModelName       string
	Provider        string
	Params          map[string]any
}

// CreateVersion appends a new version node under an existing artifact. A
// supplied parent contributes a line diff of its content against the new
// content; a parent id that resolves to nothing yields an empty diff, not an
// error. The author's manual summary rides along as notes for the
// machine-generated changelog. Summarizer failures propagate to the caller.
func (s *Service) CreateVersion(ctx context.Context, in CreateVersionInput) (*artifact.Version, error) {
	if _, err := s.artifacts.GetArtifact(ctx, in.ArtifactID); err != nil {
		return nil, err
	}

	var parent *artifact.Version
	if strings.TrimSpace(in.ParentVersionID) != "" {
		p, err := s.artifacts.GetVersion(ctx, in.ParentVersionID)
		if err != nil && !errors.Is(err, artifact.ErrNotFound) {
			return nil, err
		}
		parent = p
	}
	if parent != nil && parent.ArtifactID != in.ArtifactID {
		return nil, ErrParentMismatch
	}

	var d *diff.Diff
	parentContent := ""
	if parent != nil {
		parentContent = parent.ContentText
		if parentContent != "" {
			d = diff.Make(parentContent, in.ContentText)
		}
	}

	autoSummary, err := s.summarizer.AutoSummarize(ctx, parentContent, in.ContentText, in.Summary)
	if err != nil {
		return nil, fmt.Errorf("auto summarize: %w", err)
	}

	branch := strings.TrimSpace(in.Branch)
	if branch == "" {
		branch = "main"
	}
	v := &artifact.Version{
		ID:          uuid.NewString(),
		ArtifactID:  in.ArtifactID,
		ParentID:    in.ParentVersionID,
		Branch:      branch,
		ContentText: in.ContentText,
		BlobURL:     in.BlobURL,
		Summary:     in.Summary,
		AutoSummary: autoSummary,
		Diff:        d,
		ModelName:   in.ModelName,
		Provider:    in.Provider,
		Params:      in.Params,
		CreatedAt:   time.Now().UTC(),
	}
	if parent == nil {
		v.ParentID = ""
	}
	if err := s.offloadBlob(ctx, v, in.BlobData); err != nil {
		return nil, err
	}
	if err := s.artifacts.InsertVersion(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

type RerunResult struct {
	RunID  string          `json:"runId"`
	Output json.RawMessage `json:"output"`
}

// Rerun replays a pinned-model version through the router and records the
// attempt. The run row is created pending and always reaches a terminal
// state: done with the provider's raw output, or failed with the error detail
// before the error is propagated.
func (s *Service) Rerun(ctx context.Context, versionID string) (*RerunResult, error) {
	v, err := s.artifacts.GetVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(v.ModelName) == "" {
		return nil, ErrNoModelPinned
	}
	a, err := s.artifacts.GetArtifact(ctx, v.ArtifactID)
	if err != nil {
		return nil, err
	}

	provider := v.Provider
	if provider == "" {
		provider = "openrouter"
	}
	r := &run.Run{
		ID:        uuid.NewString(),
		ProjectID: a.ProjectID,
		VersionID: v.ID,
		ModelName: v.ModelName,
		Provider:  provider,
		Status:    run.StatusPending,
		InputJSON: v.Params,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, r); err != nil {
		return nil, err
	}

	content := v.ContentText
	if content == "" {
		content = "Re-run context missing"
	}
	resp, err := s.router.Chat(ctx, llmclient.ChatRequest{
		Model:    v.ModelName,
		Messages: []llmclient.Message{{Role: "user", Content: content}},
		Params:   v.Params,
	})
	if err != nil {
		if markErr := s.runs.MarkFailed(ctx, r.ID, err.Error(), time.Now().UTC()); markErr != nil {
			return nil, fmt.Errorf("mark run failed: %v (router: %w)", markErr, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if markErr := s.runs.MarkFailed(ctx, r.ID, err.Error(), time.Now().UTC()); markErr != nil {
			return nil, fmt.Errorf("mark run failed: %v (read body: %w)", markErr, err)
		}
		return nil, err
	}
	if err := s.runs.MarkDone(ctx, r.ID, json.RawMessage(body), time.Now().UTC()); err != nil {
		return nil, err
	}
	return &RerunResult{RunID: r.ID, Output: json.RawMessage(body)}, nil
}

// offloadBlob writes inline binary content to the blob store and records the
// returned reference on the version. An explicit BlobURL from the caller wins.
func (s *Service) offloadBlob(ctx context.Context, v *artifact.Version, data []byte) error {
	if len(data) == 0 || v.BlobURL != "" {
		return nil
	}
	if s.blobs == nil {
		return fmt.Errorf("blob content supplied but no blob store configured")
	}
	url, err := s.blobs.Put(ctx, "artifacts/"+v.ArtifactID+"/"+v.ID, data, "")
	if err != nil {
		return fmt.Errorf("store blob: %w", err)
	}
	v.BlobURL = url
	return nil
}
