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

const bookingColumns = `id, quote_id, request_id, client_id, provider_id, amount_cents, currency, policy_tier, event_time, status, COALESCE(payment_ref, ''), COALESCE(cancel_reason, ''), cancelled_by, created_on, updated_on`

type bookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (quote_id, request_id, client_id, provider_id, amount_cents, currency, policy_tier, event_time, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, b.QuoteID, b.RequestID, b.ClientID, b.ProviderID, b.AmountCents, b.Currency, b.PolicyTier, b.EventTime, b.Status, now).Scan(&b.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: booking for quote %d", domain.ErrAlreadyExists, b.QuoteID)
	}
	if err != nil {
		return err
	}
	b.CreatedOn = now
	b.UpdatedOn = now
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), fmt.Sprintf("booking %d", id))
}

func (r *bookingRepository) GetByQuoteID(ctx context.Context, quoteID int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE quote_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, quoteID), fmt.Sprintf("booking for quote %d", quoteID))
}

func (r *bookingRepository) scanOne(row *sql.Row, what string) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.QuoteID, &b.RequestID, &b.ClientID, &b.ProviderID, &b.AmountCents, &b.Currency, &b.PolicyTier, &b.EventTime, &b.Status, &b.PaymentRef, &b.CancelReason, &b.CancelledBy, &b.CreatedOn, &b.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Transition has the same single-statement check-and-set contract as the
// quote repository.
func (r *bookingRepository) Transition(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $3, updated_on = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: booking %d is no longer %s", domain.ErrConflict, id, from)
	}
	return nil
}

func (r *bookingRepository) SetCancellation(ctx context.Context, id int64, reason string, cancelledBy int64) error {
	query := `UPDATE bookings SET cancel_reason = $2, cancelled_by = $3, updated_on = $4 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, reason, cancelledBy, time.Now())
	return err
}

func (r *bookingRepository) SetPaymentRef(ctx context.Context, id int64, paymentRef string) error {
	query := `UPDATE bookings SET payment_ref = $2, updated_on = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, paymentRef, time.Now())
	return err
}

func (r *bookingRepository) ListByClient(ctx context.Context, clientID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "client_id", clientID, status, page, pageSize)
}

func (r *bookingRepository) ListByProvider(ctx context.Context, providerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "provider_id", providerID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, column string, id int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`

	args := []any{id}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.QuoteID, &b.RequestID, &b.ClientID, &b.ProviderID, &b.AmountCents, &b.Currency, &b.PolicyTier, &b.EventTime, &b.Status, &b.PaymentRef, &b.CancelReason, &b.CancelledBy, &b.CreatedOn, &b.UpdatedOn); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, count, rows.Err()
}
