package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
)

type entry struct {
	userID string
	tx     models.Transaction
}

// LedgerStore keeps transactions keyed by ID.
type LedgerStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{entries: make(map[string]entry)}
}

// collect returns the user's transactions matching keep, newest entry first.
func (s *LedgerStore) collect(userID string, keep func(models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Transaction{}
	for _, e := range s.entries {
		if e.userID == userID && (keep == nil || keep(e.tx)) {
			out = append(out, e.tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return enteredAt(out[i]).After(enteredAt(out[j]))
	})
	return out
}

func enteredAt(tx models.Transaction) time.Time {
	if tx.Timestamp == nil {
		return time.Time{}
	}
	return *tx.Timestamp
}

func (s *LedgerStore) List(_ context.Context, userID string) ([]models.Transaction, error) {
	return s.collect(userID, nil), nil
}

func (s *LedgerStore) Get(_ context.Context, userID, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.userID != userID {
		return nil, fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	tx := e.tx
	return &tx, nil
}

func (s *LedgerStore) Save(_ context.Context, userID string, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(userID, tx)
}

func (s *LedgerStore) saveLocked(userID string, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	} else if e, ok := s.entries[tx.ID]; ok && e.userID != userID {
		return fmt.Errorf("investment %s: %w", tx.ID, interfaces.ErrNotFound)
	}
	if tx.Timestamp == nil {
		now := time.Now().UTC()
		tx.Timestamp = &now
	}
	s.entries[tx.ID] = entry{userID: userID, tx: *tx}
	return nil
}

func (s *LedgerStore) SaveBatch(_ context.Context, userID string, txs []models.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range txs {
		tx := txs[i]
		tx.ID = ""
		if err := s.saveLocked(userID, &tx); err != nil {
			return i, err
		}
	}
	return len(txs), nil
}

func (s *LedgerStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.userID != userID {
		return fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

func (s *LedgerStore) DeleteAll(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.userID == userID {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

func (s *LedgerStore) ListByDateRange(_ context.Context, userID, start, end string) ([]models.Transaction, error) {
	out := s.collect(userID, func(tx models.Transaction) bool {
		return tx.Date >= start && tx.Date <= end
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *LedgerStore) SearchByName(_ context.Context, userID, term string) ([]models.Transaction, error) {
	term = strings.ToLower(term)
	return s.collect(userID, func(tx models.Transaction) bool {
		return strings.Contains(strings.ToLower(tx.Name), term)
	}), nil
}
