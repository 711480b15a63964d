// Package investment provides the per-user transaction ledger service
package investment

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/models"
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

// Service implements LedgerService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new investment ledger service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

func (s *Service) store() interfaces.LedgerStore {
	return s.storage.LedgerStore()
}

// List returns the ledger, most recently entered first
func (s *Service) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := s.store().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return txs, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	tx, err := s.store().Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return tx, nil
}

func (s *Service) Create(ctx context.Context, userID string, tx models.Transaction) (*models.Transaction, error) {
	if err := ledger.Validate(&tx); err != nil {
		return nil, err
	}
	tx.ID = ""
	tx.Timestamp = nil
	if err := s.store().Save(ctx, userID, &tx); err != nil {
		return nil, fmt.Errorf("failed to save investment: %w", err)
	}
	s.logger.Info().Str("user", userID).Str("id", tx.ID).Str("name", tx.Name).Msg("Investment created")
	return &tx, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, tx models.Transaction) (*models.Transaction, error) {
	existing, err := s.store().Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	if err := ledger.Validate(&tx); err != nil {
		return nil, err
	}
	tx.ID = id
	if tx.Timestamp == nil {
		tx.Timestamp = existing.Timestamp
	}
	if err := s.store().Save(ctx, userID, &tx); err != nil {
		return nil, fmt.Errorf("failed to update investment: %w", err)
	}
	s.logger.Info().Str("user", userID).Str("id", id).Msg("Investment updated")
	return &tx, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store().Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	s.logger.Info().Str("user", userID).Str("id", id).Msg("Investment deleted")
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	n, err := s.store().DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete investments: %w", err)
	}
	s.logger.Info().Str("user", userID).Int("count", n).Msg("All investments deleted")
	return n, nil
}

// Import validates each record and appends the valid ones. An empty batch
// is rejected.
func (s *Service) Import(ctx context.Context, userID string, txs []models.Transaction) (*models.ImportResult, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no investments provided", ledger.ErrInvalidTransaction)
	}

	result := &models.ImportResult{}
	valid := make([]models.Transaction, 0, len(txs))
	for i := range txs {
		tx := txs[i]
		if err := ledger.Validate(&tx); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i+1, err))
			continue
		}
		valid = append(valid, tx)
	}
	return s.append(ctx, userID, valid, result)
}

// ImportCSV decodes a CSV document, validates its rows and appends them.
// Rows the decoder rejects count as skipped alongside invalid ones.
func (s *Service) ImportCSV(ctx context.Context, userID string, r io.Reader) (*models.ImportResult, error) {
	decoded, err := ledger.DecodeCSV(r)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{Skipped: len(decoded.Skipped)}
	for _, rowErr := range decoded.Skipped {
		result.Errors = append(result.Errors, rowErr.Error())
	}

	valid := make([]models.Transaction, 0, len(decoded.Transactions))
	for i := range decoded.Transactions {
		tx := decoded.Transactions[i]
		if err := ledger.Validate(&tx); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %q: %v", tx.Name, err))
			continue
		}
		valid = append(valid, tx)
	}
	return s.append(ctx, userID, valid, result)
}

func (s *Service) append(ctx context.Context, userID string, txs []models.Transaction, result *models.ImportResult) (*models.ImportResult, error) {
	n, err := s.store().SaveBatch(ctx, userID, txs)
	result.ImportedCount = n
	if err != nil {
		return result, fmt.Errorf("failed to import investments: %w", err)
	}
	s.logger.Info().Str("user", userID).Int("imported", n).Int("skipped", result.Skipped).Msg("Investments imported")
	return result, nil
}

// ExportCSV writes the ledger in date order
func (s *Service) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date < txs[j].Date })
	return ledger.EncodeCSV(w, txs)
}

// Stats totals the signed amounts. LatestDate is the date of the most
// recently entered transaction.
func (s *Service) Stats(ctx context.Context, userID string) (*models.LedgerStats, error) {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.LedgerStats{TotalAmount: decimal.Zero, AverageAmount: decimal.Zero, TotalCount: len(txs)}
	if len(txs) == 0 {
		return stats, nil
	}
	for _, tx := range txs {
		stats.TotalAmount = stats.TotalAmount.Add(tx.Amount())
	}
	stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(len(txs)))).Round(2)
	stats.LatestDate = txs[0].Date
	return stats, nil
}

func (s *Service) Search(ctx context.Context, userID, name string) ([]models.Transaction, error) {
	txs, err := s.store().SearchByName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search investments: %w", err)
	}
	return txs, nil
}

// DateRange lists transactions dated within [start, end], both inclusive
func (s *Service) DateRange(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	from, err := models.NormalizeDate(start)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ledger.ErrInvalidTransaction, start)
	}
	to, err := models.NormalizeDate(end)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ledger.ErrInvalidTransaction, end)
	}
	txs, err := s.store().ListByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments by date: %w", err)
	}
	return txs, nil
}

func (s *Service) View(ctx context.Context, userID string, q ledger.Query) ([]models.Transaction, error) {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ledger.View(txs, q)
}
