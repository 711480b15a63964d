// Package app wires configuration, storage and services for the binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/interfaces"
	"github.com/bobmcallan/investtrack/internal/services/analysis"
	"github.com/bobmcallan/investtrack/internal/services/investment"
	"github.com/bobmcallan/investtrack/internal/storage"
)

// App holds the initialized services shared by cmd/invest-server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	LedgerService   interfaces.LedgerService
	AnalysisService interfaces.AnalysisService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, INVESTTRACK_CONFIG,
// investtrack.toml next to the binary, then config/investtrack.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("INVESTTRACK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "investtrack.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/investtrack.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration, opens storage and builds the services.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	if config.IsProduction() {
		if missing := config.ValidateRequired(); len(missing) > 0 {
			return nil, fmt.Errorf("production config must set: %v", missing)
		}
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := New(config, logger, storageManager)
	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// New builds an App over an already-open storage manager.
func New(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager) *App {
	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		LedgerService:   investment.NewService(storageManager, logger),
		AnalysisService: analysis.NewService(storageManager, logger, config.Analysis),
		StartupTime:     time.Now(),
	}
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
