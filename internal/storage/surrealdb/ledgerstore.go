package surrealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
)

// LedgerStore keeps one investment record per transaction. Queried fields
// are stored as columns; the full transaction travels in data as JSON.
type LedgerStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewLedgerStore(db *surrealdb.DB, logger *common.Logger) *LedgerStore {
	return &LedgerStore{
		db:     db,
		logger: logger,
	}
}

type investmentRecord struct {
	UserID    string `json:"user_id"`
	TxID      string `json:"tx_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	EnteredNs int64  `json:"entered_ns"`
	Data      string `json:"data"`
}

func newInvestmentRecord(userID string, tx models.Transaction) (investmentRecord, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return investmentRecord{}, fmt.Errorf("failed to encode transaction: %w", err)
	}
	rec := investmentRecord{
		UserID: userID,
		TxID:   tx.ID,
		Date:   tx.Date,
		Name:   tx.Name,
		Data:   string(data),
	}
	if tx.Timestamp != nil {
		rec.EnteredNs = tx.Timestamp.UnixNano()
	}
	return rec, nil
}

func (r investmentRecord) transaction() (models.Transaction, error) {
	var tx models.Transaction
	if err := json.Unmarshal([]byte(r.Data), &tx); err != nil {
		return tx, fmt.Errorf("failed to decode transaction %s: %w", r.TxID, err)
	}
	tx.ID = r.TxID
	return tx, nil
}

func investmentRID(id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID("investment", id)
}

func (s *LedgerStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	sql := "SELECT * FROM investment WHERE user_id = $user_id ORDER BY entered_ns DESC"
	return s.query(ctx, "list", sql, map[string]any{"user_id": userID})
}

func (s *LedgerStore) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tx, err := rec.transaction()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *LedgerStore) Save(ctx context.Context, userID string, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	} else {
		existing, err := s.selectRecord(ctx, tx.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.UserID != userID {
			return fmt.Errorf("investment %s: %w", tx.ID, interfaces.ErrNotFound)
		}
	}
	if tx.Timestamp == nil {
		now := time.Now().UTC()
		tx.Timestamp = &now
	}

	rec, err := newInvestmentRecord(userID, *tx)
	if err != nil {
		return err
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": investmentRID(tx.ID), "record": rec}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save investment after retries: %w", lastErr)
}

// SaveBatch stores every transaction as a new record. Incoming IDs are
// discarded. On failure it returns the number stored so far.
func (s *LedgerStore) SaveBatch(ctx context.Context, userID string, txs []models.Transaction) (int, error) {
	count := 0
	for i := range txs {
		tx := txs[i]
		tx.ID = ""
		if err := s.Save(ctx, userID, &tx); err != nil {
			return count, err
		}
		count++
	}
	s.logger.Debug().Str("user", userID).Int("count", count).Msg("Investment batch saved")
	return count, nil
}

func (s *LedgerStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if _, err := surrealdb.Delete[investmentRecord](ctx, s.db, investmentRID(id)); err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	return nil
}

func (s *LedgerStore) DeleteAll(ctx context.Context, userID string) (int, error) {
	sql := "DELETE investment WHERE user_id = $user_id RETURN BEFORE"
	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete investments: %w", err)
	}

	count := 0
	if results != nil && len(*results) > 0 {
		count = len((*results)[0].Result)
	}
	return count, nil
}

func (s *LedgerStore) ListByDateRange(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	sql := "SELECT * FROM investment WHERE user_id = $user_id AND date >= $start AND date <= $end ORDER BY date ASC"
	vars := map[string]any{"user_id": userID, "start": start, "end": end}
	return s.query(ctx, "list by date range", sql, vars)
}

func (s *LedgerStore) SearchByName(ctx context.Context, userID, term string) ([]models.Transaction, error) {
	sql := "SELECT * FROM investment WHERE user_id = $user_id AND string::lowercase(name) CONTAINS $term ORDER BY entered_ns DESC"
	vars := map[string]any{"user_id": userID, "term": strings.ToLower(term)}
	return s.query(ctx, "search", sql, vars)
}

func (s *LedgerStore) selectRecord(ctx context.Context, id string) (*investmentRecord, error) {
	rec, err := surrealdb.Select[investmentRecord](ctx, s.db, investmentRID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to select investment: %w", err)
	}
	if rec == nil || rec.TxID == "" {
		return nil, nil
	}
	return rec, nil
}

// owned returns the record when it exists and belongs to userID.
func (s *LedgerStore) owned(ctx context.Context, userID, id string) (*investmentRecord, error) {
	rec, err := s.selectRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != userID {
		return nil, fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	return rec, nil
}

func (s *LedgerStore) query(ctx context.Context, op, sql string, vars map[string]any) ([]models.Transaction, error) {
	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to %s investments: %w", op, err)
	}

	txs := []models.Transaction{}
	if results == nil || len(*results) == 0 {
		return txs, nil
	}
	for _, rec := range (*results)[0].Result {
		tx, err := rec.transaction()
		if err != nil {
			s.logger.Warn().Err(err).Str("id", rec.TxID).Msg("Skipping undecodable investment")
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
