package session

import (
	"context"
	"sync"

	"github.com/carddemo/terminal/internal/core/domain"
)

// MemoryRepository keeps Sessions in process memory. It backs tests and
// single-instance development runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]domain.Session)}
}

func (r *MemoryRepository) Get(_ context.Context, browserID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[browserID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Save(_ context.Context, browserID string, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[browserID] = *s
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, browserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, browserID)
	return nil
}
