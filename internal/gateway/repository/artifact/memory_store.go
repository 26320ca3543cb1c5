package artifact

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps artifacts and versions in process memory. Used when no
// DATABASE_URL is configured and as the test seam for services and handlers.
type MemoryStore struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
	versions  map[string]*Version
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string]*Artifact),
		versions:  make(map[string]*Version),
	}
}

func (s *MemoryStore) CreateWithFirstVersion(_ context.Context, a *Artifact, v *Version) error {
	if a == nil || v == nil {
		return fmt.Errorf("artifact and version are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[a.ID]; ok {
		return fmt.Errorf("artifact %s already exists", a.ID)
	}
	a.LatestVersionID = v.ID
	ac := *a
	vc := *v
	s.artifacts[a.ID] = &ac
	s.versions[v.ID] = &vc
	return nil
}

func (s *MemoryStore) InsertVersion(_ context.Context, v *Version) error {
	if v == nil {
		return fmt.Errorf("version is required")
	}
	if strings.TrimSpace(v.ArtifactID) == "" {
		return fmt.Errorf("artifact_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[v.ArtifactID]
	if !ok {
		return ErrNotFound
	}
	vc := *v
	s.versions[v.ID] = &vc
	a.LatestVersionID = v.ID
	return nil
}

func (s *MemoryStore) GetArtifact(_ context.Context, id string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	ac := *a
	return &ac, nil
}

func (s *MemoryStore) GetVersion(_ context.Context, id string) (*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return nil, ErrNotFound
	}
	vc := *v
	return &vc, nil
}
