package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStorage is a non-durable Storage for tests and ephemeral runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (s *MemoryStorage) Put(ctx context.Context, key string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = b
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok, nil
}
