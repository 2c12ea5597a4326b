package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can
// run against the shared pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		Repositories: newRepositories(db),
	}
}

func newRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Requests: NewRequestRepository(db),
		Quotes:   NewQuoteRepository(db),
		Bookings: NewBookingRepository(db),
		Refunds:  NewRefundRepository(db),
	}
}

// InTx runs fn against repositories bound to a single transaction. Domain
// errors returned by fn roll the transaction back and pass through
// unchanged; begin/commit failures surface as domain.ErrTransientFailure.
func (s *Store) InTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrTransientFailure, err)
	}

	repos := newRepositories(tx)
	if err := fn(&repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrTransientFailure, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
