package artifact

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateWithFirstVersionSetsLatestPointer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	a := &Artifact{ID: "a1", ProjectID: "proj", Type: "markdown", Name: "doc", CreatedAt: now}
	v := &Version{ID: "v1", ArtifactID: "a1", Branch: "main", ContentText: "hello", CreatedAt: now}
	if err := store.CreateWithFirstVersion(ctx, a, v); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetArtifact(ctx, "a1")
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if got.LatestVersionID != "v1" {
		t.Fatalf("latest = %q, want v1", got.LatestVersionID)
	}

	if err := store.CreateWithFirstVersion(ctx, a, v); err == nil {
		t.Fatalf("duplicate artifact id should be rejected")
	}
}

func TestInsertVersionRepointsLatest(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	a := &Artifact{ID: "a1", ProjectID: "proj", Type: "markdown", Name: "doc", CreatedAt: now}
	first := &Version{ID: "v1", ArtifactID: "a1", Branch: "main", CreatedAt: now}
	if err := store.CreateWithFirstVersion(ctx, a, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	second := &Version{ID: "v2", ArtifactID: "a1", ParentID: "v1", Branch: "main", CreatedAt: now}
	if err := store.InsertVersion(ctx, second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetArtifact(ctx, "a1")
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if got.LatestVersionID != "v2" {
		t.Fatalf("latest = %q, want v2", got.LatestVersionID)
	}
}

func TestInsertVersionUnknownArtifact(t *testing.T) {
	store := NewMemoryStore()
	v := &Version{ID: "v1", ArtifactID: "nope", Branch: "main", CreatedAt: time.Now().UTC()}
	if err := store.InsertVersion(context.Background(), v); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.GetArtifact(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("artifact: want ErrNotFound, got %v", err)
	}
	if _, err := store.GetVersion(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("version: want ErrNotFound, got %v", err)
	}
}
