package kb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kbrepo "workbench/internal/gateway/repository/kb"
)

func TestIngest_FetchStripChunkAndMark(t *testing.T) {
	longText := strings.Repeat("a", 2500)
	page := `<html><head>
		<script>var tracked = true;</script>
		<style>body { color: red; }</style>
	</head><body>
		<noscript>enable javascript</noscript>
		<p>` + longText + `</p>
	</body></html>`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "AI-Workbench/0.1" {
			t.Errorf("user agent = %q", got)
		}
		w.Write([]byte(page))
	}))
	defer upstream.Close()

	store := kbrepo.NewMemoryStore()
	svc := New(store)
	ctx := context.Background()

	src, err := svc.RegisterSource(ctx, "demo", upstream.URL)
	if err != nil {
		t.Fatalf("register source: %v", err)
	}
	if src.Status != kbrepo.StatusPending {
		t.Fatalf("status = %q, want pending", src.Status)
	}

	n, err := svc.Ingest(ctx, src.ID)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 3 {
		t.Fatalf("chunk count = %d, want 3", n)
	}

	chunks := store.ChunksBySource(src.ID)
	if len(chunks) != 3 {
		t.Fatalf("stored chunks = %d, want 3", len(chunks))
	}
	if got := len([]rune(chunks[0].Text)); got != 1200 {
		t.Fatalf("first chunk size = %d", got)
	}
	if got := len([]rune(chunks[2].Text)); got != 100 {
		t.Fatalf("last chunk size = %d", got)
	}
	for _, c := range chunks {
		if c.URL != upstream.URL {
			t.Fatalf("chunk url = %q, want %q", c.URL, upstream.URL)
		}
		if strings.Contains(c.Text, "tracked") || strings.Contains(c.Text, "color: red") {
			t.Fatalf("markup leaked into chunk text: %q", c.Text)
		}
	}

	after, err := store.GetSource(ctx, src.ID)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if after.Status != kbrepo.StatusIngested {
		t.Fatalf("status = %q, want ingested", after.Status)
	}
}

func TestIngest_UnknownSource(t *testing.T) {
	svc := New(kbrepo.NewMemoryStore())
	if _, err := svc.Ingest(context.Background(), "missing"); err == nil {
		t.Fatalf("expected an error for an unknown source")
	}
}

func TestStripMarkup(t *testing.T) {
	text, err := StripMarkup(`<div><script>x()</script><p>Hello   <b>world</b></p>
	<style>.x{}</style>trailing</div>`)
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if text != "Hello world trailing" {
		t.Fatalf("text = %q", text)
	}
}

func TestChunkText(t *testing.T) {
	cases := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "", 4, nil},
		{"exact multiple", "abcdefgh", 4, []string{"abcd", "efgh"}},
		{"remainder", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"short input", "ab", 4, []string{"ab"}},
		{"multibyte runes", "ααββγγ", 2, []string{"αα", "ββ", "γγ"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ChunkText(tc.text, tc.size)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d chunks, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("chunk %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
