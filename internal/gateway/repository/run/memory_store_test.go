package run

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTerminalRunsAreImmutable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	r := &Run{ID: "r1", VersionID: "v1", ModelName: "m", Status: StatusPending, CreatedAt: now}
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.MarkDone(ctx, "r1", json.RawMessage(`{"ok":true}`), now); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	if err := store.MarkFailed(ctx, "r1", "late failure", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("marking a done run failed should be rejected, got %v", err)
	}
	if err := store.MarkDone(ctx, "r1", json.RawMessage(`{}`), now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("re-finishing a done run should be rejected, got %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDone {
		t.Fatalf("status = %q, want done", got.Status)
	}
	if string(got.OutputJSON) != `{"ok":true}` {
		t.Fatalf("output = %s", got.OutputJSON)
	}
}

func TestGetUnknownRun(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
