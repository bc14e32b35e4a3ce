package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ConfigStore is the persistent half of the configuration service
type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// ConfigService is a read-through string cache over the configuration store.
// A miss is fetched once and memoized for the process lifetime; writes go to
// the store and the cache synchronously. An absent key reads as "".
type ConfigService struct {
	store  ConfigStore
	logger *zap.Logger

	mu     sync.RWMutex
	values map[string]string
}

// NewConfigService creates a configuration service over the given store
func NewConfigService(store ConfigStore, logger *zap.Logger) *ConfigService {
	return &ConfigService{
		store:  store,
		logger: logger,
		values: make(map[string]string),
	}
}

// Get returns the value for key, consulting the store only on a cache miss
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	value, ok := s.values[key]
	s.mu.RUnlock()
	if ok {
		return value, nil
	}

	value, err := s.store.GetConfig(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	return value, nil
}

// Set writes the value to the store and, on success, to the cache
func (s *ConfigService) Set(ctx context.Context, key, value string) error {
	if err := s.store.SetConfig(ctx, key, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	return nil
}
