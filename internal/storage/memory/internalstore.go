package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
)

// InternalStore holds users and per-user KV pairs.
type InternalStore struct {
	mu    sync.RWMutex
	users map[string]models.InternalUser
	kv    map[string]map[string]models.UserKeyValue
}

func NewInternalStore() *InternalStore {
	return &InternalStore{
		users: make(map[string]models.InternalUser),
		kv:    make(map[string]map[string]models.UserKeyValue),
	}
}

func (s *InternalStore) GetUser(_ context.Context, userID string) (*models.InternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, interfaces.ErrNotFound)
	}
	return &u, nil
}

func (s *InternalStore) CreateUser(_ context.Context, user *models.InternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.UserID]; ok {
		return fmt.Errorf("user %s: %w", user.UserID, interfaces.ErrAlreadyExists)
	}
	s.users[user.UserID] = *user
	return nil
}

func (s *InternalStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	delete(s.kv, userID)
	return nil
}

func (s *InternalStore) GetUserKV(_ context.Context, userID, key string) (*models.UserKeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kv, ok := s.kv[userID][key]
	if !ok {
		return nil, fmt.Errorf("user KV %s/%s: %w", userID, key, interfaces.ErrNotFound)
	}
	return &kv, nil
}

func (s *InternalStore) SetUserKV(_ context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv[userID] == nil {
		s.kv[userID] = make(map[string]models.UserKeyValue)
	}
	prev := s.kv[userID][key]
	s.kv[userID][key] = models.UserKeyValue{
		UserID:   userID,
		Key:      key,
		Value:    value,
		Version:  prev.Version + 1,
		DateTime: time.Now().UTC(),
	}
	return nil
}

func (s *InternalStore) DeleteUserKV(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv[userID], key)
	return nil
}

func (s *InternalStore) ListUserKV(_ context.Context, userID string) ([]*models.UserKeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.UserKeyValue
	for _, kv := range s.kv[userID] {
		kv := kv
		out = append(out, &kv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *InternalStore) Close() error { return nil }
