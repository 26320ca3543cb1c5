package chat

import (
	"context"
	"testing"

	"workbench/internal/gateway/repository/style"
	llmclient "workbench/internal/llmClient"
)

func presetWithHint(slug, hint, tone string) *style.Preset {
	return &style.Preset{
		ID:      "id-" + slug,
		Slug:    slug,
		Name:    slug,
		ToneSys: tone,
		Params:  style.Params{Temperature: 0.3, TopP: 0.85, MaxTokensHint: hint},
	}
}

func TestMerge_BucketTable(t *testing.T) {
	cases := []struct {
		hint string
		want int
	}{
		{"short", 300},
		{"medium", 800},
		{"long", 1600},
	}
	for _, tc := range cases {
		_, params := Merge(presetWithHint("p", tc.hint, ""), nil, nil)
		if got := params["max_tokens"]; got != tc.want {
			t.Fatalf("hint %q: max_tokens = %v, want %d", tc.hint, got, tc.want)
		}
	}
}

func TestMerge_UnknownHintAppliesNoOverride(t *testing.T) {
	_, params := Merge(presetWithHint("p", "auto", ""), nil, nil)
	if _, ok := params["max_tokens"]; ok {
		t.Fatalf("auto hint should not set max_tokens, got %v", params["max_tokens"])
	}
}

func TestMerge_CallerParamsWin(t *testing.T) {
	_, params := Merge(presetWithHint("p", "short", ""), nil, map[string]any{"max_tokens": 500})
	if got := params["max_tokens"]; got != 500 {
		t.Fatalf("max_tokens = %v, want caller's 500", got)
	}
}

func TestMerge_PrependsSystemTone(t *testing.T) {
	msgs := []llmclient.Message{{Role: "user", Content: "hi"}}
	out, _ := Merge(presetWithHint("p", "auto", "Be concise."), msgs, nil)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Role != "system" || out[0].Content != "Be concise." {
		t.Fatalf("out[0] = %+v", out[0])
	}
	if out[1].Content != "hi" {
		t.Fatalf("out[1] = %+v", out[1])
	}
}

func TestMerge_NoPreset(t *testing.T) {
	msgs := []llmclient.Message{{Role: "user", Content: "hi"}}
	out, params := Merge(nil, msgs, map[string]any{"temperature": 0.7})
	if len(out) != 1 {
		t.Fatalf("messages should be unchanged, got %d", len(out))
	}
	if got := params["temperature"]; got != 0.7 {
		t.Fatalf("temperature = %v", got)
	}
	if _, ok := params["max_tokens"]; ok {
		t.Fatalf("no preset should not set max_tokens")
	}
}

func TestResolvePreset_OverrideWinsOverPin(t *testing.T) {
	ctx := context.Background()
	store := style.NewMemoryStore()
	concise := presetWithHint("concise", "short", "No filler.")
	formal := presetWithHint("formal", "medium", "Professional.")
	store.Upsert(ctx, concise)
	store.Upsert(ctx, formal)
	store.PinStyle(ctx, "conv-1", "proj", formal.ID)

	svc := New(store, store, nil, "")

	p, err := svc.ResolvePreset(ctx, "conv-1", "concise")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p == nil || p.Slug != "concise" {
		t.Fatalf("override should win, got %+v", p)
	}
}

func TestResolvePreset_FallsBackToConversationPin(t *testing.T) {
	ctx := context.Background()
	store := style.NewMemoryStore()
	formal := presetWithHint("formal", "medium", "Professional.")
	store.Upsert(ctx, formal)
	store.PinStyle(ctx, "conv-1", "proj", formal.ID)

	svc := New(store, store, nil, "")

	p, err := svc.ResolvePreset(ctx, "conv-1", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p == nil || p.Slug != "formal" {
		t.Fatalf("pin should apply, got %+v", p)
	}
}

func TestResolvePreset_NothingResolves(t *testing.T) {
	ctx := context.Background()
	store := style.NewMemoryStore()
	svc := New(store, store, nil, "")

	p, err := svc.ResolvePreset(ctx, "unknown-conv", "unknown-slug")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p != nil {
		t.Fatalf("expected no preset, got %+v", p)
	}
}
