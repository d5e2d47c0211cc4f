package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"m8translate/internal/session/models"
	"m8translate/pkg/platform/sentinel"
)

const sessionKeyPrefix = "m8t:session:"

// RedisStore keeps sessions as JSON values whose Redis TTL matches the
// session deadline, so expired sessions disappear without a sweep.
type RedisStore struct {
	client         *redis.Client
	lookupDuration prometheus.Histogram
}

// NewRedis constructs a Redis-backed session store. reg may be nil.
func NewRedis(client *redis.Client, reg prometheus.Registerer) *RedisStore {
	s := &RedisStore{client: client}
	if reg != nil {
		s.lookupDuration = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "m8translate_session_lookup_duration_ms",
			Help:    "Latency of Redis session lookups in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
	}
	return s
}

func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", sentinel.ErrExpired)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	start := time.Now()
	defer func() {
		if s.lookupDuration != nil {
			s.lookupDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}
	}()

	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", errors.Join(sentinel.ErrInvalidState, err))
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires keys itself.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
