package store

import (
	"context"
	"sync"
)

type MemoryStore[T any] struct {
	mu    sync.RWMutex
	m     map[string]T
	clone func(T) T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}}
}

// NewCopyingMemoryStore copies values with fn on the way in and out, so
// callers never share maps or pointers with the stored record.
func NewCopyingMemoryStore[T any](fn func(T) T) *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}, clone: fn}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	if ok && s.clone != nil {
		v = s.clone(v)
	}
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	if s.clone != nil {
		v = s.clone(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
