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

const refundColumns = `id, booking_id, reference, original_amount_cents, refund_percent, refund_amount_cents, currency, policy_tier, force_majeure, COALESCE(payment_ref, ''), computed_at, processing_status, COALESCE(processor_ref, ''), COALESCE(failure_reason, ''), created_on, updated_on`

type refundRepository struct {
	db DBTX
}

func NewRefundRepository(db DBTX) repository.RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, rec *domain.RefundRecord) error {
	query := `INSERT INTO refund_records (booking_id, reference, original_amount_cents, refund_percent, refund_amount_cents, currency, policy_tier, force_majeure, payment_ref, computed_at, processing_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, rec.BookingID, rec.Reference, rec.OriginalAmountCents, rec.RefundPercent, rec.RefundAmountCents, rec.Currency, rec.PolicyTier, rec.ForceMajeure, rec.PaymentRef, rec.ComputedAt, rec.ProcessingStatus, now).Scan(&rec.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: refund record for booking %d", domain.ErrAlreadyExists, rec.BookingID)
	}
	if err != nil {
		return err
	}
	rec.CreatedOn = now
	rec.UpdatedOn = now
	return nil
}

func (r *refundRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.RefundRecord, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_records WHERE booking_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, bookingID), fmt.Sprintf("refund record for booking %d", bookingID))
}

func (r *refundRepository) GetByReference(ctx context.Context, reference string) (*domain.RefundRecord, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_records WHERE reference = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, reference), fmt.Sprintf("refund record %s", reference))
}

func (r *refundRepository) scanOne(row *sql.Row, what string) (*domain.RefundRecord, error) {
	rec := &domain.RefundRecord{}
	err := row.Scan(&rec.ID, &rec.BookingID, &rec.Reference, &rec.OriginalAmountCents, &rec.RefundPercent, &rec.RefundAmountCents, &rec.Currency, &rec.PolicyTier, &rec.ForceMajeure, &rec.PaymentRef, &rec.ComputedAt, &rec.ProcessingStatus, &rec.ProcessorRef, &rec.FailureReason, &rec.CreatedOn, &rec.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *refundRepository) ListByProcessingStatus(ctx context.Context, status domain.RefundProcessingStatus, limit int32) ([]domain.RefundRecord, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_records WHERE processing_status = $1 ORDER BY created_on ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.RefundRecord
	for rows.Next() {
		var rec domain.RefundRecord
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.Reference, &rec.OriginalAmountCents, &rec.RefundPercent, &rec.RefundAmountCents, &rec.Currency, &rec.PolicyTier, &rec.ForceMajeure, &rec.PaymentRef, &rec.ComputedAt, &rec.ProcessingStatus, &rec.ProcessorRef, &rec.FailureReason, &rec.CreatedOn, &rec.UpdatedOn); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// TransitionProcessing conditionally moves a record's processing status.
// processorRef and failureReason are only written when non-empty, so a
// completion update cannot erase the reference recorded at submission.
func (r *refundRepository) TransitionProcessing(ctx context.Context, id int64, from, to domain.RefundProcessingStatus, processorRef, failureReason string) error {
	query := `UPDATE refund_records
	          SET processing_status = $3,
	              processor_ref = COALESCE(NULLIF($4, ''), processor_ref),
	              failure_reason = NULLIF($5, ''),
	              updated_on = $6
	          WHERE id = $1 AND processing_status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, processorRef, failureReason, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: refund record %d is no longer %s", domain.ErrConflict, id, from)
	}
	return nil
}
