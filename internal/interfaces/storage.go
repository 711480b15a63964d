// Package interfaces defines service and storage contracts for investtrack
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/investtrack/internal/models"
)

// ErrNotFound is wrapped by stores when a record does not exist or is not
// owned by the caller.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is wrapped when a create would replace an existing record.
var ErrAlreadyExists = errors.New("already exists")

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	LedgerStore() LedgerStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts and per-user config.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	// CreateUser stores a new user, failing with ErrAlreadyExists when the
	// user ID is taken. It never overwrites.
	CreateUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error
	ListUserKV(ctx context.Context, userID string) ([]*models.UserKeyValue, error)

	Close() error
}

// LedgerStore persists each user's transactions. Every method is scoped to
// userID; records owned by another user behave as absent.
type LedgerStore interface {
	// List returns the user's ledger, most recently entered first.
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Get(ctx context.Context, userID, id string) (*models.Transaction, error)

	// Save upserts tx, assigning an ID and entry timestamp when empty.
	Save(ctx context.Context, userID string, tx *models.Transaction) error

	// SaveBatch appends txs as new records and returns how many were stored.
	SaveBatch(ctx context.Context, userID string, txs []models.Transaction) (int, error)

	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)

	// ListByDateRange returns transactions dated within [start, end]
	// (YYYY-MM-DD, inclusive), oldest first.
	ListByDateRange(ctx context.Context, userID, start, end string) ([]models.Transaction, error)

	// SearchByName returns transactions whose name contains term,
	// case-insensitively.
	SearchByName(ctx context.Context, userID, term string) ([]models.Transaction, error)
}
