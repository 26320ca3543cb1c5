package kb

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps sources and chunks in process memory. Search approximates
// the Postgres tsquery with case-insensitive word matching; it exists for the
// no-database mode and as the test seam, not as a search engine.
type MemoryStore struct {
	mu      sync.Mutex
	sources map[string]*Source
	chunks  []Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sources: make(map[string]*Source)}
}

func (s *MemoryStore) CreateSource(_ context.Context, src *Source) error {
	if src == nil {
		return fmt.Errorf("source is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := *src
	s.sources[src.ID] = &sc
	return nil
}

func (s *MemoryStore) GetSource(_ context.Context, id string) (*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return nil, ErrNotFound
	}
	sc := *src
	return &sc, nil
}

func (s *MemoryStore) MarkIngested(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return ErrNotFound
	}
	src.Status = StatusIngested
	return nil
}

func (s *MemoryStore) InsertChunks(_ context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, orgID, query string, limit int) ([]Chunk, error) {
	if limit <= 0 {
		limit = 8
	}
	words := strings.Fields(strings.ToLower(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Chunk
	for _, c := range s.chunks {
		src, ok := s.sources[c.SourceID]
		if !ok || src.OrgID != orgID {
			continue
		}
		text := strings.ToLower(c.Text)
		matched := false
		for _, w := range words {
			if strings.Contains(text, w) {
				matched = true
				break
			}
		}
		if matched {
			out = append(out, c)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ChunksBySource returns the stored chunks for one source. Test helper.
func (s *MemoryStore) ChunksBySource(sourceID string) []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Chunk
	for _, c := range s.chunks {
		if c.SourceID == sourceID {
			out = append(out, c)
		}
	}
	return out
}
