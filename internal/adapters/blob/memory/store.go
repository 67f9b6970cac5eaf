package memory

import (
	"context"
	"io"
	"sync"

	"pet-adoption-api/internal/ports/blob"
)

// Store es el backend de binarios para dev y tests: todo en un map.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = b

	return "memory://" + key, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return blob.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Len expone el tamaño para asserts en tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ blob.Store = (*Store)(nil)
