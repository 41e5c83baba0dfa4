// Package session keeps server-side sessions in Redis, referenced by an
// opaque cookie value.
package session

import (
	"context" // Context for Redis operations
	"errors"  // Sentinel errors
	"fmt"     // Error wrapping
	"time"    // TTLs

	"report_portal/internal/domain" // Session identity, error kinds
	"report_portal/internal/utils"  // Redis JSON helpers

	"github.com/google/uuid"       // Opaque session ids
	"github.com/redis/go-redis/v9" // Redis client
)

const keyPrefix = "session:"

var errCollision = errors.New("session id collision")

// Session is the server-side record behind a cookie
type Session struct {
	ID        string              `json:"-"`              // Cookie value, not stored in the payload
	User      *domain.SessionUser `json:"user,omitempty"` // Authenticated identity
	CreatedAt time.Time           `json:"created_at"`     // Login time
}

// Authenticated reports whether the session carries a user
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Store is the session persistence contract
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context, user *domain.SessionUser) (*Session, error)
	Destroy(ctx context.Context, id string) error
}

// RedisStore persists sessions as JSON under session:<id>
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a store whose sessions live for ttl
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Get loads a session; unknown, expired or malformed ids yield (nil, nil)
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil // Never a key we issued
	}
	var sess Session
	found, err := utils.GetJSON(ctx, s.rdb, keyPrefix+id, &sess)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", domain.ErrSessionStore, err)
	}
	if !found {
		return nil, nil
	}
	sess.ID = id
	return &sess, nil
}

// Create stores a new session for user under a fresh random id
func (s *RedisStore) Create(ctx context.Context, user *domain.SessionUser) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), User: user, CreatedAt: time.Now().UTC()}
	ok, err := utils.SetJSON(ctx, s.rdb, keyPrefix+sess.ID, sess, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: save session: %w", domain.ErrSessionStore, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionStore, errCollision)
	}
	return sess, nil
}

// Destroy deletes the session so its id can never be used again
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := utils.DeleteKey(ctx, s.rdb, keyPrefix+id); err != nil {
		return fmt.Errorf("%w: destroy session: %w", domain.ErrSessionStore, err)
	}
	return nil
}
