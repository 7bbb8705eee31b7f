// Package memory provides an in-memory kv.Store used as the default
// backend and as the test double for the ledger.
package memory

import (
	"context"
	"sync"

	"tally/internal/kv"
)

type Store struct {
	mu    sync.Mutex
	items map[string][]byte

	// FailSet, when non-nil, is returned by every Set call. Tests use it
	// to exercise the ledger's persistence failure policy.
	FailSet error
}

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, kv.ErrNoKey
	}
	out := append([]byte(nil), v...)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet != nil {
		return s.FailSet
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
