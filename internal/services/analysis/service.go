// Package analysis runs valuation and projection over a user's ledger
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/models"
	"github.com/bobmcallan/investtrack/internal/valuation"
)

// ErrNothingToProject is returned by Chart when the ledger is empty and no
// contribution was given.
var ErrNothingToProject = errors.New("nothing to project")

// Compile-time interface check
var _ interfaces.AnalysisService = (*Service)(nil)

// Service implements AnalysisService. Results are recomputed on every call.
type Service struct {
	storage  interfaces.StorageManager
	logger   *common.Logger
	defaults models.ProjectionConfig
	now      func() time.Time
}

// NewService creates an analysis service. defaults apply to users with no
// stored settings.
func NewService(storage interfaces.StorageManager, logger *common.Logger, defaults common.AnalysisConfig) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		defaults: models.ProjectionConfig{
			Years:             defaults.Years,
			GrowthRatePrimary: defaults.GrowthRate,
			TaxRate:           defaults.TaxRate,
		}.Normalize(),
		now: time.Now,
	}
}

// SetClock replaces the time source used to date synthetic points.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) load(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := s.storage.LedgerStore().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return txs, nil
}

func (s *Service) Valuation(ctx context.Context, userID string) (valuation.Series, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return valuation.Series{}, err
	}
	return valuation.Cumulative(valuation.Aggregate(txs)), nil
}

func (s *Service) Contribution(ctx context.Context, userID string) (decimal.Decimal, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return valuation.EstimateAnnualContribution(txs), nil
}

func (s *Service) Project(ctx context.Context, userID string, cfg models.ProjectionConfig) (*models.Analysis, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := valuation.Analyze(txs, cfg, s.now().UTC())
	s.logger.Debug().
		Str("user", userID).
		Int("transactions", len(txs)).
		Int("years", result.Config.Years).
		Bool("empty", result.Empty).
		Msg("Projection computed")
	return &result, nil
}

func (s *Service) Chart(ctx context.Context, userID string, cfg models.ProjectionConfig) ([]byte, error) {
	result, err := s.Project(ctx, userID, cfg)
	if err != nil {
		return nil, err
	}
	if result.Empty {
		return nil, ErrNothingToProject
	}
	return RenderProjectionChart(result.Chart)
}

// Settings returns the stored projection defaults, or the server defaults
// when the user has none.
func (s *Service) Settings(ctx context.Context, userID string) (models.ProjectionConfig, error) {
	kv, err := s.storage.InternalStore().GetUserKV(ctx, userID, models.KeyProjectionDefaults)
	if errors.Is(err, interfaces.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return models.ProjectionConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := s.defaults
	if err := json.Unmarshal([]byte(kv.Value), &cfg); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Ignoring unreadable projection settings")
		return s.defaults, nil
	}
	return cfg.Normalize(), nil
}

// SaveSettings clamps and stores the user's projection defaults.
func (s *Service) SaveSettings(ctx context.Context, userID string, cfg models.ProjectionConfig) (models.ProjectionConfig, error) {
	cfg = cfg.Normalize()
	data, err := json.Marshal(cfg)
	if err != nil {
		return models.ProjectionConfig{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.storage.InternalStore().SetUserKV(ctx, userID, models.KeyProjectionDefaults, string(data)); err != nil {
		return models.ProjectionConfig{}, fmt.Errorf("failed to save settings: %w", err)
	}
	s.logger.Info().Str("user", userID).Msg("Projection settings saved")
	return cfg, nil
}

func (s *Service) ResetSettings(ctx context.Context, userID string) (models.ProjectionConfig, error) {
	if err := s.storage.InternalStore().DeleteUserKV(ctx, userID, models.KeyProjectionDefaults); err != nil {
		return models.ProjectionConfig{}, fmt.Errorf("failed to reset settings: %w", err)
	}
	s.logger.Info().Str("user", userID).Msg("Projection settings reset")
	return s.defaults, nil
}
