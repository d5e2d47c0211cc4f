package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"m8translate/internal/secrets"
	"m8translate/internal/settings/models"
	"m8translate/pkg/platform/sentinel"
)

const companyUUID = "3b1c8a4e-2f5d-4c6b-9a7e-1d2f3a4b5c6d"

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) init() *models.Settings {
	return models.NewSettings(companyUUID, s.now)
}

func (s *InMemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), companyUUID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpdateCreatesFromInit() {
	updated, err := s.store.Update(context.Background(), companyUUID, s.init, func(st *models.Settings) error {
		st.OpenAIKey = &secrets.Sealed{Encrypted: "ab", IV: "cd", Salt: "ef", AuthTag: "01", Algorithm: secrets.AlgorithmAES256GCM}
		return nil
	})
	s.Require().NoError(err)
	s.True(updated.HasOpenAIKey())

	stored, err := s.store.Get(context.Background(), companyUUID)
	s.Require().NoError(err)
	s.Equal(updated, stored)
	s.Equal(models.DefaultPreferences(), stored.Preferences)
}

func (s *InMemoryStoreSuite) TestUpdateAbortsOnError() {
	boom := errors.New("boom")
	_, err := s.store.Update(context.Background(), companyUUID, s.init, func(st *models.Settings) error {
		st.UsageCount = 99
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.Get(context.Background(), companyUUID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedValuesDoNotAlias() {
	_, err := s.store.Update(context.Background(), companyUUID, s.init, func(st *models.Settings) error {
		st.RecordUsage(s.now)
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.Get(context.Background(), companyUUID)
	s.Require().NoError(err)
	*got.LastUsed = s.now.Add(time.Hour)
	got.UsageCount = 42

	again, err := s.store.Get(context.Background(), companyUUID)
	s.Require().NoError(err)
	s.Equal(1, again.UsageCount)
	s.True(again.LastUsed.Equal(s.now))
}

func (s *InMemoryStoreSuite) TestConcurrentUpdatesAreSerialised() {
	const workers = 50
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.store.Update(context.Background(), companyUUID, s.init, func(st *models.Settings) error {
				st.RecordUsage(s.now)
				return nil
			})
		}()
	}
	wg.Wait()

	stored, err := s.store.Get(context.Background(), companyUUID)
	s.Require().NoError(err)
	s.Equal(workers, stored.UsageCount)
}
