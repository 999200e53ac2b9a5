package store

import (
	"context"
	"sync"

	"github.com/localmind-ai/localmind/core"
)

// InMemoryStore is a map-backed RunStore for tests and single-process demos.
// States are cloned on both write and read so callers can never mutate the
// stored copy through a shared slice or map.
type InMemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]core.RunState
	descriptors map[string]core.RunDescriptor
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs:        make(map[string]core.RunState),
		descriptors: make(map[string]core.RunDescriptor),
	}
}

// SaveRun implements RunStore.
func (s *InMemoryStore) SaveRun(_ context.Context, runID string, state core.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = state.Clone()
	return nil
}

// LoadRun implements RunStore.
func (s *InMemoryStore) LoadRun(_ context.Context, runID string) (core.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.runs[runID]
	if !ok {
		return core.RunState{}, ErrNotFound
	}
	return state.Clone(), nil
}

// AppendMessage implements RunStore.
func (s *InMemoryStore) AppendMessage(_ context.Context, runID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.runs[runID]
	if !ok {
		return ErrNotFound
	}
	state = state.Clone()
	state.Append(msg)
	s.runs[runID] = state
	return nil
}

// PutDescriptor implements RunStore.
func (s *InMemoryStore) PutDescriptor(_ context.Context, d core.RunDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descriptors[d.ID] = d
	return nil
}

// GetDescriptor implements RunStore.
func (s *InMemoryStore) GetDescriptor(_ context.Context, runID string) (core.RunDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.descriptors[runID]
	if !ok {
		return core.RunDescriptor{}, ErrNotFound
	}
	return d, nil
}
