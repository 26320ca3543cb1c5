package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"workbench/internal/gateway/handler"
	"workbench/internal/gateway/repository/artifact"
	"workbench/internal/gateway/repository/blob"
	kbrepo "workbench/internal/gateway/repository/kb"
	"workbench/internal/gateway/repository/playbook"
	"workbench/internal/gateway/repository/run"
	"workbench/internal/gateway/repository/style"
	"workbench/internal/gateway/server"
	chatsvc "workbench/internal/gateway/service/chat"
	kbsvc "workbench/internal/gateway/service/kb"
	versionsvc "workbench/internal/gateway/service/version"
	llmclient "workbench/internal/llmClient"
)

type staticSummarizer struct{}

func (staticSummarizer) AutoSummarize(context.Context, string, string, string) (string, error) {
	return "auto changelog", nil
}

// newTestGateway wires the full handler stack on memory stores, with the
// router pointed at the given upstream URL.
func newTestGateway(t *testing.T, routerURL string) http.Handler {
	t.Helper()

	styles := style.NewMemoryStore()
	require.NoError(t, style.Seed(context.Background(), styles))

	router := llmclient.NewRouterClient("test-key", routerURL, "", "")
	kbStore := kbrepo.NewMemoryStore()

	svc := handler.NewService(
		versionsvc.New(artifact.NewMemoryStore(), run.NewMemoryStore(), blob.NewMemoryStore(), staticSummarizer{}, router),
		chatsvc.New(styles, styles, router, ""),
		kbsvc.New(kbStore),
		kbStore,
		styles,
		styles,
		playbook.NewMemoryStore(),
		handler.Defaults{OrgID: "demo", ProjectID: "proj"},
	)
	return server.NewMux(svc)
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestArtifactLifecycle(t *testing.T) {
	h := newTestGateway(t, "http://unused.invalid")

	rec := doJSON(t, h, http.MethodPost, "/artifacts", map[string]any{
		"type":        "markdown",
		"name":        "launch notes",
		"contentText": "line one\nline two",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Artifact artifact.Artifact `json:"artifact"`
		Version  artifact.Version  `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "proj", created.Artifact.ProjectID)
	require.Equal(t, created.Version.ID, created.Artifact.LatestVersionID)
	require.Equal(t, "main", created.Version.Branch)

	rec = doJSON(t, h, http.MethodPost, "/artifacts/"+created.Artifact.ID+"/versions", map[string]any{
		"parentVersionId": created.Version.ID,
		"contentText":     "line one\nline two changed",
		"summary":         "tweak wording",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var appended struct {
		Version artifact.Version `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appended))
	require.Equal(t, created.Version.ID, appended.Version.ParentID)
	require.NotNil(t, appended.Version.Diff)
	require.Equal(t, "auto changelog", appended.Version.AutoSummary)

	// version under a missing artifact
	rec = doJSON(t, h, http.MethodPost, "/artifacts/no-such/versions", map[string]any{"contentText": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// replay without a pinned model
	rec = doJSON(t, h, http.MethodPost, "/versions/"+appended.Version.ID+"/rerun", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "no model pinned")
}

func TestListStylesSortedByName(t *testing.T) {
	h := newTestGateway(t, "http://unused.invalid")

	rec := doJSON(t, h, http.MethodGet, "/styles", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Items []style.Preset `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 5)

	names := make([]string, 0, len(out.Items))
	for _, p := range out.Items {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"Concise", "Explanatory", "Formal", "Learning", "Normal"}, names)
}

func TestPinStyle(t *testing.T) {
	h := newTestGateway(t, "http://unused.invalid")

	rec := doJSON(t, h, http.MethodPost, "/conversations/conv-1/style", map[string]any{"styleSlug": "no-such-style"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown style")

	rec = doJSON(t, h, http.MethodPost, "/conversations/conv-1/style", map[string]any{"styleSlug": "concise"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		OK           bool               `json:"ok"`
		Conversation style.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.OK)
	require.Equal(t, "conv-1", out.Conversation.ID)
	require.Equal(t, "proj", out.Conversation.ProjectID)
	require.NotEmpty(t, out.Conversation.StylePresetID)
}

func TestChatStreamsUpstreamEvents(t *testing.T) {
	var upstreamReq struct {
		Stream   bool                `json:"stream"`
		Model    string              `json:"model"`
		Messages []llmclient.Message `json:"messages"`
	}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upstreamReq))
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"delta\":\"hi\"}\n\ndata: [DONE]\n\n"))
	}))
	defer upstream.Close()

	h := newTestGateway(t, upstream.URL)

	rec := doJSON(t, h, http.MethodPost, "/chat", map[string]any{
		"messages":          []map[string]string{{"role": "user", "content": "hello"}},
		"styleOverrideSlug": "concise",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "data: [DONE]")

	require.True(t, upstreamReq.Stream)
	require.Equal(t, "openai/gpt-4.1-mini", upstreamReq.Model)
	require.Len(t, upstreamReq.Messages, 2)
	require.Equal(t, "system", upstreamReq.Messages[0].Role)
	require.Contains(t, upstreamReq.Messages[0].Content, "No filler")
	require.Equal(t, "hello", upstreamReq.Messages[1].Content)
}

func TestChatUpstreamFailureMapsTo502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	h := newTestGateway(t, upstream.URL)

	rec := doJSON(t, h, http.MethodPost, "/chat", map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "upstream failure")
}

func TestKnowledgeBaseFlow(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Deploy instructions for the staging cluster.</p></body></html>"))
	}))
	defer page.Close()

	h := newTestGateway(t, "http://unused.invalid")

	rec := doJSON(t, h, http.MethodPost, "/kb/sources", map[string]any{"url": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/kb/sources", map[string]any{"url": page.URL})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		Source kbrepo.Source `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "demo", created.Source.OrgID)
	require.Equal(t, kbrepo.StatusPending, created.Source.Status)

	rec = doJSON(t, h, http.MethodPost, "/kb/ingest", map[string]any{"sourceId": created.Source.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ingested struct {
		OK     bool `json:"ok"`
		Chunks int  `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ingested))
	require.True(t, ingested.OK)
	require.Equal(t, 1, ingested.Chunks)

	rec = doJSON(t, h, http.MethodPost, "/search", map[string]any{"query": "staging"})
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Context []kbrepo.Chunk `json:"context"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found.Context, 1)
	require.Equal(t, page.URL, found.Context[0].URL)

	rec = doJSON(t, h, http.MethodPost, "/search", map[string]any{"query": "unrelated"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"context":[]}`, rec.Body.String())
}

func TestPlaybooks(t *testing.T) {
	h := newTestGateway(t, "http://unused.invalid")

	rec := doJSON(t, h, http.MethodPost, "/playbooks", map[string]any{
		"title":  "Incident response",
		"tags":   []string{"ops", "oncall"},
		"bodyMd": "1. page the on-call\n2. open a channel",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		Playbook playbook.Playbook `json:"playbook"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "demo", created.Playbook.OrgID)
	require.NotEmpty(t, created.Playbook.ID)

	rec = doJSON(t, h, http.MethodGet, "/playbooks?q=oncall", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Results []playbook.Playbook `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found.Results, 1)
	require.Equal(t, "Incident response", found.Results[0].Title)

	rec = doJSON(t, h, http.MethodGet, "/playbooks?q=nomatch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestGateway(t, "http://unused.invalid")
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}
