package run

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

func (s *MemoryStore) Create(_ context.Context, r *Run) error {
	if r == nil {
		return fmt.Errorf("run is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := *r
	s.runs[r.ID] = &rc
	return nil
}

func (s *MemoryStore) MarkDone(_ context.Context, id string, output json.RawMessage, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok || r.Status != StatusPending {
		return ErrNotFound
	}
	r.Status = StatusDone
	r.OutputJSON = append(json.RawMessage(nil), output...)
	r.FinishedAt = &finishedAt
	return nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, id string, detail string, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok || r.Status != StatusPending {
		return ErrNotFound
	}
	r.Status = StatusFailed
	r.Error = detail
	r.FinishedAt = &finishedAt
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	rc := *r
	return &rc, nil
}

// Count reports the number of stored runs. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// ByVersion returns the runs recorded for a version. Test helper.
func (s *MemoryStore) ByVersion(versionID string) []*Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Run
	for _, r := range s.runs {
		if r.VersionID == versionID {
			rc := *r
			out = append(out, &rc)
		}
	}
	return out
}
