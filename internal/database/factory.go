package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver, used by migrations

	"etl-go/internal/config"
	"etl-go/internal/etl"
)

// Credentials are the connection parameters taken from the command
// line. They are never read from the config file.
type Credentials struct {
	URL      string
	User     string
	Password string
}

// NewStoreFromConfig builds a connection pool from config and
// credentials and verifies connectivity before returning the store.
// Failures here are engine-init failures: no data has been touched.
func NewStoreFromConfig(ctx context.Context, cfg *config.Config, creds Credentials) (*PostgresStore, error) {
	dsn, err := BuildDSN(creds.URL, creds.User, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", etl.ErrEngineInit, err)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w: %w", etl.ErrEngineInit, err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.ConnectTimeoutSeconds > 0 {
		poolCfg.ConnConfig.ConnectTimeout = time.Duration(cfg.Database.ConnectTimeoutSeconds) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w: %w", etl.ErrEngineInit, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w: %w", etl.ErrEngineInit, err)
	}

	return NewPostgresStore(pool, cfg.Database.Schema, cfg.Source.UsersTable, cfg.Source.ProjectsTable, cfg.Target.Table), nil
}

// OpenSQL opens a database/sql handle through the pgx stdlib driver.
// Migrations run over database/sql rather than the pool.
func OpenSQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sql connection: %w", err)
	}
	return db, nil
}
