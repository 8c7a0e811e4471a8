package session

import (
	"context" // Request-scoped cancellation
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Timestamps and durations

	"campus_voting/internal/utils" // JSON cache helpers

	"github.com/google/uuid"       // Session ids
	"github.com/redis/go-redis/v9" // Redis client
)

// ErrNotFound is returned when a session id has no stored state
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store keeps sessions in Redis as JSON, keyed by an opaque id
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store whose entries live for ttl after each save
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL is the lifetime of a saved session
func (s *Store) TTL() time.Duration { return s.ttl }

// New returns an unsaved, empty session with a fresh id
func (s *Store) New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Load fetches the session stored under id
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	var sess Session
	found, err := utils.GetCache(ctx, s.rdb, keyPrefix+id, &sess)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	sess.ID = id
	return &sess, nil
}

// Save writes the session and refreshes its TTL
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if err := utils.SetCache(ctx, s.rdb, keyPrefix+sess.ID, sess, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy removes the session
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := utils.DeleteCache(ctx, s.rdb, keyPrefix+id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
