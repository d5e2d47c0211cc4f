package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"m8translate/internal/settings/models"
	"m8translate/pkg/platform/sentinel"
)

const (
	settingsKeyPrefix = "m8t:settings:"
	maxUpdateAttempts = 5
)

// RedisStore keeps one JSON document per company. Updates run under WATCH so
// concurrent usage counting never loses an increment.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, companyUUID string) (*models.Settings, error) {
	return s.get(ctx, s.client, companyUUID)
}

func (s *RedisStore) Update(ctx context.Context, companyUUID string, init func() *models.Settings, fn MutateFunc) (*models.Settings, error) {
	key := settingsKeyPrefix + companyUUID
	var (
		result    *models.Settings
		mutateErr error
	)

	txf := func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx, companyUUID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			current = init()
		case err != nil:
			return err
		}
		if err := fn(current); err != nil {
			mutateErr = err
			return err
		}
		payload, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			result = current
		}
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if mutateErr != nil {
			return nil, mutateErr
		}
		if err != nil {
			if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, sentinel.ErrInvalidState) {
				return nil, err
			}
			return nil, fmt.Errorf("update settings: %w", errors.Join(sentinel.ErrUnavailable, err))
		}
		return result, nil
	}
	return nil, fmt.Errorf("update settings: %w", errors.Join(sentinel.ErrUnavailable, redis.TxFailedErr))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, companyUUID string) (*models.Settings, error) {
	raw, err := c.Get(ctx, settingsKeyPrefix+companyUUID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", errors.Join(sentinel.ErrInvalidState, err))
	}
	return &settings, nil
}
