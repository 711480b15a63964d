package interfaces

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/models"
	"github.com/bobmcallan/investtrack/internal/valuation"
)

// LedgerService manages a user's transactions
type LedgerService interface {
	List(ctx context.Context, userID string) ([]models.Transaction, error)
	Get(ctx context.Context, userID, id string) (*models.Transaction, error)

	// Create validates and stores a new transaction.
	Create(ctx context.Context, userID string, tx models.Transaction) (*models.Transaction, error)

	// Update replaces every editable field of an existing transaction. The
	// entry timestamp is kept unless tx carries one.
	Update(ctx context.Context, userID, id string, tx models.Transaction) (*models.Transaction, error)

	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int, error)

	// Import validates and appends a batch. Invalid records are skipped and
	// reported.
	Import(ctx context.Context, userID string, txs []models.Transaction) (*models.ImportResult, error)

	// ImportCSV decodes a CSV document and imports its rows.
	ImportCSV(ctx context.Context, userID string, r io.Reader) (*models.ImportResult, error)

	// ExportCSV writes the user's ledger as CSV.
	ExportCSV(ctx context.Context, userID string, w io.Writer) error

	Stats(ctx context.Context, userID string) (*models.LedgerStats, error)
	Search(ctx context.Context, userID, name string) ([]models.Transaction, error)
	DateRange(ctx context.Context, userID, start, end string) ([]models.Transaction, error)

	// View filters and sorts the ledger for list display.
	View(ctx context.Context, userID string, q ledger.Query) ([]models.Transaction, error)
}

// AnalysisService runs the valuation and projection engine over a user's ledger
type AnalysisService interface {
	Valuation(ctx context.Context, userID string) (valuation.Series, error)
	Contribution(ctx context.Context, userID string) (decimal.Decimal, error)
	Project(ctx context.Context, userID string, cfg models.ProjectionConfig) (*models.Analysis, error)

	// Chart renders the projection as a PNG image.
	Chart(ctx context.Context, userID string, cfg models.ProjectionConfig) ([]byte, error)

	// Settings returns the user's stored projection defaults, or the server
	// defaults when none are stored.
	Settings(ctx context.Context, userID string) (models.ProjectionConfig, error)
	SaveSettings(ctx context.Context, userID string, cfg models.ProjectionConfig) (models.ProjectionConfig, error)

	// ResetSettings drops the stored defaults and returns the server defaults.
	ResetSettings(ctx context.Context, userID string) (models.ProjectionConfig, error)
}
