package playbook

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu    sync.Mutex
	items []Playbook
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, p *Playbook) error {
	if p == nil {
		return fmt.Errorf("playbook is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *p)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, query string) ([]Playbook, error) {
	words := strings.Fields(strings.ToLower(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Playbook
	for _, p := range s.items {
		haystack := strings.ToLower(p.Title + " " + strings.Join(p.Tags, " ") + " " + p.BodyMD)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out, nil
}
