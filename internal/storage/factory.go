// Package storage selects the persistence backend.
package storage

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/storage/memory"
	"github.com/bobmcallan/investtrack/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendSurrealDB = "surrealdb"
	BackendMemory    = "memory"
)

// NewStorageManager creates a storage manager based on the configuration.
// Supported backends: "surrealdb" (default), "memory".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := strings.ToLower(strings.TrimSpace(config.Storage.Backend))
	if backend == "" {
		backend = BackendSurrealDB
	}

	switch backend {
	case BackendSurrealDB:
		return surrealdb.NewManager(logger, config)

	case BackendMemory:
		logger.Warn().Msg("Using in-memory storage: data is lost on restart")
		return memory.NewManager(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: surrealdb, memory)", backend)
	}
}
