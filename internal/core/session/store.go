// Package session holds the terminal Session of each browser session.
//
// The Store is the only writer: Login replaces the Session, Logout destroys
// it. Every write is announced to subscribers after it has been persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// Listener is notified after a write. s is nil when the session was destroyed.
type Listener func(browserID string, s *domain.Session)

// Store reads and writes Sessions through a repository.
type Store struct {
	repo ports.SessionRepository

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func NewStore(repo ports.SessionRepository) *Store {
	return &Store{repo: repo, listeners: make(map[int]Listener)}
}

// Get returns the Session of browserID, or nil when there is none.
func (st *Store) Get(ctx context.Context, browserID string) (*domain.Session, error) {
	if browserID == "" {
		return nil, nil
	}
	s, err := st.repo.Get(ctx, browserID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// Login stores s as the Session of browserID, replacing any previous one.
func (st *Store) Login(ctx context.Context, browserID string, s *domain.Session) error {
	if browserID == "" || s == nil {
		return fmt.Errorf("login: %w", domain.ErrInvalidInput)
	}
	if err := st.repo.Save(ctx, browserID, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	st.notify(browserID, s)
	return nil
}

// Refresh replaces the access token of the current Session. Identity and
// role are kept as they were at login.
func (st *Store) Refresh(ctx context.Context, browserID, accessToken string, expiresAt time.Time) (*domain.Session, error) {
	cur, err := st.Get(ctx, browserID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrSessionNotFound
	}

	next := *cur
	next.AccessToken = accessToken
	next.ExpiresAt = expiresAt
	if err := st.repo.Save(ctx, browserID, &next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	st.notify(browserID, &next)
	return &next, nil
}

// Logout destroys the Session of browserID. It is safe to call when there is
// no Session.
func (st *Store) Logout(ctx context.Context, browserID string) error {
	if browserID == "" {
		return nil
	}
	if err := st.repo.Delete(ctx, browserID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	st.notify(browserID, nil)
	return nil
}

// Subscribe registers fn and returns a function that removes it.
func (st *Store) Subscribe(fn Listener) (unsubscribe func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.listeners[id] = fn
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.listeners, id)
			st.mu.Unlock()
		})
	}
}

func (st *Store) notify(browserID string, s *domain.Session) {
	st.mu.RLock()
	fns := make([]Listener, 0, len(st.listeners))
	for _, fn := range st.listeners {
		fns = append(fns, fn)
	}
	st.mu.RUnlock()

	for _, fn := range fns {
		fn(browserID, s)
	}
}
