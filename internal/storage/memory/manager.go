// Package memory is an in-process storage backend for development and tests.
package memory

import (
	"github.com/bobmcallan/investtrack/internal/interfaces"
)

// Manager implements interfaces.StorageManager with mutex-guarded maps.
type Manager struct {
	internal *InternalStore
	ledger   *LedgerStore
}

// NewManager returns an empty in-memory storage manager.
func NewManager() *Manager {
	return &Manager{
		internal: NewInternalStore(),
		ledger:   NewLedgerStore(),
	}
}

func (m *Manager) InternalStore() interfaces.InternalStore { return m.internal }
func (m *Manager) LedgerStore() interfaces.LedgerStore     { return m.ledger }
func (m *Manager) Close() error                            { return nil }

var _ interfaces.StorageManager = (*Manager)(nil)
