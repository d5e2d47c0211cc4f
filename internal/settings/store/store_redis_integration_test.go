//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"m8translate/internal/settings/models"
	"m8translate/internal/settings/store"
	"m8translate/pkg/platform/sentinel"
	"m8translate/pkg/testutil/containers"
)

const companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func initSettings() *models.Settings {
	return models.NewSettings(companyUUID, time.Now().UTC())
}

func (s *RedisStoreSuite) TestUpdateAndGet() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, companyUUID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Update(ctx, companyUUID, initSettings, func(st *models.Settings) error {
		st.Preferences.CustomInstructions = "Always sign off with the company name."
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.Get(ctx, companyUUID)
	s.Require().NoError(err)
	s.Equal("Always sign off with the company name.", got.Preferences.CustomInstructions)
}

// TestConcurrentUsageCounting verifies WATCH retries keep every increment.
func (s *RedisStoreSuite) TestConcurrentUsageCounting() {
	ctx := context.Background()
	const goroutines = 4
	const perGoroutine = 3

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perGoroutine)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				_, err := s.store.Update(ctx, companyUUID, initSettings, func(st *models.Settings) error {
					st.RecordUsage(time.Now())
					return nil
				})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if err != nil {
			failures++
		}
	}

	got, err := s.store.Get(ctx, companyUUID)
	s.Require().NoError(err)
	s.Equal(goroutines*perGoroutine-failures, got.UsageCount)
	s.Zero(failures)
}

func (s *RedisStoreSuite) TestCorruptDocument() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "m8t:settings:"+companyUUID, "{not json", 0).Err())

	_, err := s.store.Get(ctx, companyUUID)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}
