// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bmitrend/internal/domain"

	"github.com/lib/pq"
)

// SQLSTATE codes PostgreSQL reports for broken constraints.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.MeasurementRepository = (*DB)(nil)

// New wraps an existing connection pool. The schema must already exist.
func New(s *sql.DB) *DB {
	return &DB{sql: s}
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(pingCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := RunMigrations(connStr); err != nil {
		_ = s.Close()
		return nil, err
	}
	return New(s), nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// mapError turns a unique violation into domain.ErrConflict and a missing
// referenced user into domain.ErrNotFound.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrConflict)
	case foreignKeyViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrNotFound)
	}
	return err
}
