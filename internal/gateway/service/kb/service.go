// Package kb ingests registered source URLs: fetch, strip markup, chunk, and
// store the chunks for full-text retrieval.
package kb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	kbrepo "workbench/internal/gateway/repository/kb"
)

// ChunkSize is the fixed ingestion window in runes. No overlap, no sentence
// boundary awareness.
const ChunkSize = 1200

const userAgent = "AI-Workbench/0.1"

type Service struct {
	store kbrepo.Store
	http  *http.Client
}

func New(store kbrepo.Store) *Service {
	return &Service{
		store: store,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterSource records a URL for later ingestion.
func (s *Service) RegisterSource(ctx context.Context, orgID, url string) (*kbrepo.Source, error) {
	src := &kbrepo.Source{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		URL:       url,
		Status:    kbrepo.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateSource(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

// Ingest fetches the source's URL, extracts its text, stores the chunks, and
// marks the source ingested. Returns the number of chunks written.
func (s *Service) Ingest(ctx context.Context, sourceID string) (int, error) {
	src, err := s.store.GetSource(ctx, sourceID)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", src.URL, err)
	}

	text, err := StripMarkup(string(body))
	if err != nil {
		return 0, err
	}

	pieces := ChunkText(text, ChunkSize)
	chunks := make([]kbrepo.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		chunks = append(chunks, kbrepo.Chunk{
			ID:       uuid.NewString(),
			SourceID: src.ID,
			URL:      src.URL,
			Text:     piece,
		})
	}
	if err := s.store.InsertChunks(ctx, chunks); err != nil {
		return 0, err
	}
	if err := s.store.MarkIngested(ctx, src.ID); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// StripMarkup removes script/style/noscript subtrees, extracts the remaining
// text, and collapses runs of whitespace to single spaces.
func StripMarkup(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// ChunkText slices text into fixed-size rune windows. A 2500-rune text at
// size 1200 yields windows of 1200, 1200, and 100 runes.
func ChunkText(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
