// Package store persists company settings in process memory or Redis.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"m8translate/internal/settings/models"
	"m8translate/pkg/platform/sentinel"
)

// MutateFunc edits settings in place. Returning an error aborts the update.
type MutateFunc func(*models.Settings) error

// InMemoryStore keeps settings in a map guarded by a mutex.
type InMemoryStore struct {
	mu       sync.Mutex
	settings map[string]*models.Settings
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{settings: make(map[string]*models.Settings)}
}

func (s *InMemoryStore) Get(_ context.Context, companyUUID string) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.settings[companyUUID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(stored)
}

// Update applies fn to the stored settings, or to init() when none exist,
// and saves the result atomically.
func (s *InMemoryStore) Update(_ context.Context, companyUUID string, init func() *models.Settings, fn MutateFunc) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.settings[companyUUID]
	var working *models.Settings
	if ok {
		var err error
		if working, err = clone(current); err != nil {
			return nil, err
		}
	} else {
		working = init()
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	saved, err := clone(working)
	if err != nil {
		return nil, err
	}
	s.settings[companyUUID] = saved
	return working, nil
}

// clone deep-copies through JSON so pointer fields never alias the map.
func clone(in *models.Settings) (*models.Settings, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var out models.Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &out, nil
}
