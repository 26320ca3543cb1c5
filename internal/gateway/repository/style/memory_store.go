package style

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store and ConversationStore in process memory.
type MemoryStore struct {
	mu            sync.Mutex
	bySlug        map[string]*Preset
	conversations map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySlug:        make(map[string]*Preset),
		conversations: make(map[string]*Conversation),
	}
}

func (s *MemoryStore) BySlug(_ context.Context, slug string) (*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	pc := *p
	return &pc, nil
}

func (s *MemoryStore) ByID(_ context.Context, id string) (*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.bySlug {
		if p.ID == id {
			pc := *p
			return &pc, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Preset, 0, len(s.bySlug))
	for _, p := range s.bySlug {
		items = append(items, *p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *MemoryStore) Upsert(_ context.Context, p *Preset) error {
	if p == nil || strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("preset slug is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pc := *p
	s.bySlug[p.Slug] = &pc
	return nil
}

func (s *MemoryStore) PinStyle(_ context.Context, conversationID, projectID, presetID string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		c = &Conversation{ID: conversationID, ProjectID: projectID}
		s.conversations[conversationID] = c
	}
	c.StylePresetID = presetID
	cc := *c
	return &cc, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cc := *c
	return &cc, nil
}
