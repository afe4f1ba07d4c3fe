// Package memory provides an in-process store.RunStore.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/smallnest/agentpatterns/store"
)

// RunStore keeps runs in a map guarded by a mutex.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*store.Run
}

// NewRunStore creates an empty store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*store.Run)}
}

func clone(r *store.Run) *store.Run {
	c := *r
	c.Artifacts = maps.Clone(r.Artifacts)
	return &c
}

func (s *RunStore) Save(ctx context.Context, run *store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = clone(run)
	return nil
}

func (s *RunStore) Load(ctx context.Context, id string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	return clone(run), nil
}

func (s *RunStore) List(ctx context.Context, workflow string) ([]*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*store.Run, 0, len(s.runs))
	for _, run := range s.runs {
		if workflow == "" || run.Workflow == workflow {
			runs = append(runs, clone(run))
		}
	}
	store.SortRuns(runs)
	return runs, nil
}

func (s *RunStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return store.ErrRunNotFound
	}
	delete(s.runs, id)
	return nil
}
