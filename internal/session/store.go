package session

import (
	"context"
	"sync"
)

// Store persists bearer tokens by session id. Load returns "" with a nil
// error when nothing is stored.
type Store interface {
	Load(ctx context.Context, id string) (string, error)
	Save(ctx context.Context, id, token string) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps tokens in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: map[string]string{}}
}

func (s *MemoryStore) Load(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[id], nil
}

func (s *MemoryStore) Save(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = token
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
	return nil
}
