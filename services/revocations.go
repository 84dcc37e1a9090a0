package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RevocationStore records, per user, the instant before which every issued
// token is rejected.
type RevocationStore interface {
	RevokeBefore(ctx context.Context, userID uuid.UUID, at time.Time) error
	RevokedBefore(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type RedisRevocations struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRevocations keeps each mark for ttl; after that every token it
// could reject has expired anyway.
func NewRedisRevocations(client *redis.Client, ttl time.Duration) *RedisRevocations {
	return &RedisRevocations{client: client, ttl: ttl}
}

func revocationKey(userID uuid.UUID) string {
	return "tokens:revoked_before:" + userID.String()
}

func (r *RedisRevocations) RevokeBefore(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.client.Set(ctx, revocationKey(userID), at.Unix(), r.ttl).Err()
}

func (r *RedisRevocations) RevokedBefore(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	data, err := r.client.Get(ctx, revocationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0).UTC(), nil
}

// MemoryRevocations is the single-process RevocationStore used when no
// Redis host is configured.
type MemoryRevocations struct {
	mu    sync.RWMutex
	marks map[uuid.UUID]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{marks: map[uuid.UUID]time.Time{}}
}

func (m *MemoryRevocations) RevokeBefore(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[userID] = at.Truncate(time.Second).UTC()
	return nil
}

func (m *MemoryRevocations) RevokedBefore(_ context.Context, userID uuid.UUID) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.marks[userID], nil
}
