package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carddemo/terminal/internal/core/domain"
)

const defaultSessionTTL = 8 * time.Hour

// SessionRepository stores terminal Sessions as JSON.
// Key format: session:<browser_id>
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository returns a repository whose entries live for ttl after
// the last write. A zero ttl uses eight hours.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) Get(ctx context.Context, browserID string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, r.key(browserID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, browserID string, s *domain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(browserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, browserID string) error {
	if err := r.client.Del(ctx, r.key(browserID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) key(browserID string) string {
	return "session:" + browserID
}
