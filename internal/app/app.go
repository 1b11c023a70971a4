package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"etl-go/internal/config"
	"etl-go/internal/database"
	"etl-go/internal/database/migrations"
	"etl-go/internal/etl"
)

// ETLApp is the application layer between the CLI and the pipeline.
// It owns the engine lifecycle: the connection pool is acquired here
// and released by Close, which the CLI defers on every exit path.
type ETLApp struct {
	cfg      *config.Config
	store    *database.PostgresStore
	pipeline *etl.Pipeline
	logger   *slog.Logger
	logFile  *os.File
	runID    string
}

// NewETLApp creates a fully wired ETLApp. The caller must call Close
// when done, whether or not the run succeeds.
func NewETLApp(ctx context.Context, cfg *config.Config, creds database.Credentials) (*ETLApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	policy, err := etl.ParseMaskPolicy(cfg.Mask.Policy)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	runID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := database.NewStoreFromConfig(ctx, cfg, creds)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("initializing engine: %w", err)
	}

	if err := checkDestinationSchema(creds); err != nil {
		store.Close()
		logFile.Close()
		return nil, err
	}

	pipeline := etl.NewPipeline(store, store, &slogAdapter{l: logger}, etl.RealClock{}, policy)

	logger.Info("engine started")

	return &ETLApp{
		cfg:      cfg,
		store:    store,
		pipeline: pipeline,
		logger:   logger,
		logFile:  logFile,
		runID:    runID,
	}, nil
}

// checkDestinationSchema verifies the destination migrations are
// current before any data is read. A stale schema fails the run here,
// not halfway through at the write stage.
func checkDestinationSchema(creds database.Credentials) error {
	dsn, err := database.BuildDSN(creds.URL, creds.User, creds.Password)
	if err != nil {
		return err
	}

	db, err := database.OpenSQL(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.CheckStatus(db); err != nil {
		return fmt.Errorf("destination schema out of date (run \"etl migrate\"): %w", err)
	}
	return nil
}

// Run executes one pipeline run.
func (a *ETLApp) Run(ctx context.Context) (*etl.RunReport, error) {
	return a.pipeline.Run(ctx)
}

// Close releases the engine and the log file.
func (a *ETLApp) Close() error {
	a.logger.Info("engine stopped")
	a.store.Close()
	if a.logFile != nil {
		a.logFile.Close()
	}
	return nil
}
