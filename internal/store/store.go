package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

var _ service.Repository = (*Store)(nil)

// Store is the PostgreSQL repository
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a database transaction
func (s *Store) InTx(ctx context.Context, fn func(tx service.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// pgTx implements service.Tx on top of a sqlx transaction
type pgTx struct {
	tx *sqlx.Tx
}

var _ service.Tx = (*pgTx)(nil)

// mapError converts constraint violations into the domain error taxonomy
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s", models.NewConflict(pqErr.Detail), err)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %s", models.NewConflict("record is still referenced"), err)
	case "23514": // check_violation
		return fmt.Errorf("%w: %s", models.NewValidationError(pqErr.Constraint, "check failed"), err)
	}
	return err
}

func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewNotFound(entity, id)
	}
	return err
}

// expectOne turns a zero-row write into a NotFound
func expectOne(res sql.Result, entity string, id interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NewNotFound(entity, id)
	}
	return nil
}
