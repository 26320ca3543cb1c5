package tenant

import (
	"context"
	"fmt"
	"sync"
)

type MemoryStore struct {
	mu       sync.Mutex
	orgs     map[string]Org
	projects map[string]Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:     make(map[string]Org),
		projects: make(map[string]Project),
	}
}

func (s *MemoryStore) EnsureOrg(_ context.Context, org *Org) error {
	if org == nil {
		return fmt.Errorf("org is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		s.orgs[org.ID] = *org
	}
	return nil
}

func (s *MemoryStore) EnsureProject(_ context.Context, p *Project) error {
	if p == nil {
		return fmt.Errorf("project is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		s.projects[p.ID] = *p
	}
	return nil
}
