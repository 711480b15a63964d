package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
)

type InternalStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewInternalStore(db *surrealdb.DB, logger *common.Logger) *InternalStore {
	return &InternalStore{
		db:     db,
		logger: logger,
	}
}

func (s *InternalStore) GetUser(ctx context.Context, userID string) (*models.InternalUser, error) {
	user, err := surrealdb.Select[models.InternalUser](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.UserID == "" {
		return nil, fmt.Errorf("user %s: %w", userID, interfaces.ErrNotFound)
	}
	return user, nil
}

// CreateUser inserts the user with CREATE, which fails on an existing
// record instead of replacing it.
func (s *InternalStore) CreateUser(ctx context.Context, user *models.InternalUser) error {
	sql := "CREATE type::record('user', $id) CONTENT $user"
	vars := map[string]any{"id": user.UserID, "user": user}
	_, err := surrealdb.Query[[]models.InternalUser](ctx, s.db, sql, vars)
	if err == nil {
		return nil
	}
	if _, getErr := s.GetUser(ctx, user.UserID); getErr == nil {
		return fmt.Errorf("user %s: %w", user.UserID, interfaces.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func (s *InternalStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := surrealdb.Delete[models.InternalUser](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UserKeyValue ID format: user_kv:<userID>_<key>
func kvID(userID, key string) string {
	return userID + "_" + key
}

func (s *InternalStore) GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error) {
	kv, err := surrealdb.Select[models.UserKeyValue](ctx, s.db, surrealmodels.NewRecordID("user_kv", kvID(userID, key)))
	if err != nil {
		return nil, fmt.Errorf("failed to select user KV: %w", err)
	}
	if kv == nil || kv.UserID == "" {
		return nil, fmt.Errorf("user KV %s/%s: %w", userID, key, interfaces.ErrNotFound)
	}
	return kv, nil
}

// SetUserKV upserts the value and bumps its version.
func (s *InternalStore) SetUserKV(ctx context.Context, userID, key, value string) error {
	version := 1
	if existing, err := s.GetUserKV(ctx, userID, key); err == nil {
		version = existing.Version + 1
	}

	kv := models.UserKeyValue{
		UserID:   userID,
		Key:      key,
		Value:    value,
		Version:  version,
		DateTime: time.Now().UTC(),
	}
	sql := "UPSERT type::record('user_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": kvID(userID, key), "kv": kv}
	return s.upsert(ctx, "user KV", sql, vars)
}

func (s *InternalStore) DeleteUserKV(ctx context.Context, userID, key string) error {
	_, err := surrealdb.Delete[models.UserKeyValue](ctx, s.db, surrealmodels.NewRecordID("user_kv", kvID(userID, key)))
	if err != nil {
		return fmt.Errorf("failed to delete user KV: %w", err)
	}
	return nil
}

func (s *InternalStore) ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error) {
	sql := "SELECT * FROM user_kv WHERE user_id = $user_id ORDER BY key"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.UserKeyValue](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list user KV: %w", err)
	}

	var mapped []*models.UserKeyValue
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
	}
	return mapped, nil
}

// upsert runs an UPSERT statement, retrying up to three times.
func (s *InternalStore) upsert(ctx context.Context, what, sql string, vars map[string]any) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Int("attempt", attempt).Str("record", what).Msg("Upsert failed")
	}
	return fmt.Errorf("failed to save %s after retries: %w", what, lastErr)
}

func (s *InternalStore) Close() error {
	return nil
}
