package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/repository"
)

const quoteColumns = `id, request_id, provider_id, client_id, amount_cents, currency, policy_tier, event_time, issued_at, expires_at, status, updated_on`

type quoteRepository struct {
	db DBTX
}

func NewQuoteRepository(db DBTX) repository.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	query := `INSERT INTO quotes (request_id, provider_id, client_id, amount_cents, currency, policy_tier, event_time, issued_at, expires_at, status, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, q.RequestID, q.ProviderID, q.ClientID, q.AmountCents, q.Currency, q.PolicyTier, q.EventTime, q.IssuedAt, q.ExpiresAt, q.Status).Scan(&q.ID)
}

func (r *quoteRepository) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	q := &domain.Quote{}
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.RequestID, &q.ProviderID, &q.ClientID, &q.AmountCents, &q.Currency, &q.PolicyTier, &q.EventTime, &q.IssuedAt, &q.ExpiresAt, &q.Status, &q.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: quote %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quoteRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE request_id = $1 ORDER BY issued_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []domain.Quote{}
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.RequestID, &q.ProviderID, &q.ClientID, &q.AmountCents, &q.Currency, &q.PolicyTier, &q.EventTime, &q.IssuedAt, &q.ExpiresAt, &q.Status, &q.UpdatedOn); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// Transition applies the status change only if the stored status still
// matches from. The check-and-set is one UPDATE; zero affected rows means
// another actor already moved the quote.
func (r *quoteRepository) Transition(ctx context.Context, id int64, from, to domain.QuoteStatus) error {
	query := `UPDATE quotes SET status = $3, updated_on = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: quote %d is no longer %s", domain.ErrConflict, id, from)
	}
	return nil
}

func (r *quoteRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE quotes SET status = $1, updated_on = $2
	          WHERE status IN ($3, $4) AND expires_at IS NOT NULL AND expires_at < $2`
	res, err := r.db.ExecContext(ctx, query, domain.QuoteStatusExpired, now, domain.QuoteStatusSent, domain.QuoteStatusViewed)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
