package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterClient_Chat_SendsAuthAndIdentificationHeaders(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewRouterClient("key-123", srv.URL, "http://localhost:3000", "AI Workbench")
	resp, err := c.Chat(context.Background(), ChatRequest{
		Model:    "openai/gpt-4.1-mini",
		Messages: []Message{{Role: "user", Content: "hi"}},
		Params:   map[string]any{"max_tokens": 300, "temperature": 0.3},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	resp.Body.Close()

	if got := gotReq.Header.Get("Authorization"); got != "Bearer key-123" {
		t.Fatalf("Authorization = %q", got)
	}
	if got := gotReq.Header.Get("HTTP-Referer"); got != "http://localhost:3000" {
		t.Fatalf("HTTP-Referer = %q", got)
	}
	if got := gotReq.Header.Get("X-Title"); got != "AI Workbench" {
		t.Fatalf("X-Title = %q", got)
	}
	// params merge into the body at the top level
	if got := gotBody["max_tokens"]; got != float64(300) {
		t.Fatalf("max_tokens = %v", got)
	}
	if got := gotBody["model"]; got != "openai/gpt-4.1-mini" {
		t.Fatalf("model = %v", got)
	}
	if got := gotBody["stream"]; got != false {
		t.Fatalf("stream = %v", got)
	}
}

func TestRouterClient_Chat_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRouterClient("k", srv.URL, "", "")
	_, err := c.Chat(context.Background(), ChatRequest{Model: "m"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d", statusErr.Code)
	}
}

func TestRouterGenerator_ExtractsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"changelog text"}}]}`))
	}))
	defer srv.Close()

	g := NewRouterGenerator(NewRouterClient("k", srv.URL, "", ""), "")
	out, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "changelog text" {
		t.Fatalf("out = %q", out)
	}
}

func TestRouterGenerator_MalformedResponseYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	g := NewRouterGenerator(NewRouterClient("k", srv.URL, "", ""), "")
	out, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("malformed response should not error: %v", err)
	}
	if out != "" {
		t.Fatalf("out = %q, want empty", out)
	}
}
