package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"etl-go/internal/etl"
)

// PostgresStore implements the pipeline's Source and Sink against a
// PostgreSQL database through a pgx connection pool.
type PostgresStore struct {
	pool          *pgxpool.Pool
	schema        string
	usersTable    string
	projectsTable string
	targetTable   string
}

// NewPostgresStore wraps an existing pool. Most callers should use
// NewStoreFromConfig, which also verifies connectivity.
func NewPostgresStore(pool *pgxpool.Pool, schema, usersTable, projectsTable, targetTable string) *PostgresStore {
	return &PostgresStore{
		pool:          pool,
		schema:        schema,
		usersTable:    usersTable,
		projectsTable: projectsTable,
		targetTable:   targetTable,
	}
}

// ReadUsers returns every row of the users table projected to
// (id, email). No filtering, no row-count validation.
func (s *PostgresStore) ReadUsers(ctx context.Context) ([]etl.UserRecord, error) {
	query := fmt.Sprintf("SELECT id, email FROM %s", s.qualify(s.usersTable))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %w", s.usersTable, etl.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var users []etl.UserRecord
	for rows.Next() {
		var u etl.UserRecord
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w: %w", s.usersTable, etl.ErrSourceUnavailable, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", s.usersTable, etl.ErrSourceUnavailable, err)
	}
	return users, nil
}

// ReadProjects returns every row of the projects table projected to
// (id, owner_id). The id column becomes ProjectID so it cannot collide
// with the user id downstream; owner_id may be NULL.
func (s *PostgresStore) ReadProjects(ctx context.Context) ([]etl.ProjectRecord, error) {
	query := fmt.Sprintf("SELECT id, owner_id FROM %s", s.qualify(s.projectsTable))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w: %w", s.projectsTable, etl.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var projects []etl.ProjectRecord
	for rows.Next() {
		var p etl.ProjectRecord
		if err := rows.Scan(&p.ProjectID, &p.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w: %w", s.projectsTable, etl.ErrSourceUnavailable, err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", s.projectsTable, etl.ErrSourceUnavailable, err)
	}
	return projects, nil
}

// WriteProjectCounts replaces the entire contents of the destination
// table with the given rows. Truncate and load run in one transaction,
// so a failed write leaves the previous contents in place.
func (s *PostgresStore) WriteProjectCounts(ctx context.Context, counts []etl.ProjectCount) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning sink transaction: %w: %w", etl.ErrSinkWrite, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE "+s.qualify(s.targetTable)); err != nil {
		return fmt.Errorf("clearing %s: %w: %w", s.targetTable, etl.ErrSinkWrite, err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{s.schema, s.targetTable},
		[]string{"user_id", "masked_email", "total_projects"},
		pgx.CopyFromSlice(len(counts), func(i int) ([]any, error) {
			c := counts[i]
			return []any{c.UserID, c.MaskedEmail, c.TotalProjects}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("loading %s: %w: %w", s.targetTable, etl.ErrSinkWrite, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sink transaction: %w: %w", etl.ErrSinkWrite, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) qualify(table string) string {
	return pgx.Identifier{s.schema, table}.Sanitize()
}
