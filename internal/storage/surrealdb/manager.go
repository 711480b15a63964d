package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	internalStore *InternalStore
	ledgerStore   *LedgerStore
}

// schema is applied on every start. SurrealDB v3 errors on querying
// non-existent tables.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS user_kv SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS investment SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS investment_user ON TABLE investment FIELDS user_id",
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	m := newManager(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func newManager(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:            db,
		logger:        logger,
		internalStore: NewInternalStore(db, logger),
		ledgerStore:   NewLedgerStore(db, logger),
	}
}

func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internalStore
}

func (m *Manager) LedgerStore() interfaces.LedgerStore {
	return m.ledgerStore
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
