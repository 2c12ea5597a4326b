package service

import (
	"context"
	"errors"
	"fmt"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/policy"
	"servibook-backend/internal/repository"

	"github.com/google/uuid"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	refundRepo  repository.RefundRepository
	tx          repository.TxRunner
	calc        *policy.Calculator
	refundSvc   RefundService
	clock       Clock
}

func NewBookingService(bookingRepo repository.BookingRepository, refundRepo repository.RefundRepository, tx repository.TxRunner, calc *policy.Calculator, refundSvc RefundService, clock Clock) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		refundRepo:  refundRepo,
		tx:          tx,
		calc:        calc,
		refundSvc:   refundSvc,
		clock:       clock,
	}
}

// CancelBooking cancels a PENDING or CONFIRMED booking and records the
// refund decision. The status transition and the refund record insert
// commit together; the payment processor is only contacted afterwards,
// outside the transaction. A repeated or concurrent call lands on the
// record the first call created.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, actorID int64, reason string, forceMajeure bool) (*domain.RefundRecord, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.ClientID && actorID != b.ProviderID {
		return nil, fmt.Errorf("%w: actor %d is not a party to booking %d", domain.ErrInvalidRequest, actorID, bookingID)
	}
	if b.Status == domain.BookingStatusCancelled {
		// Idempotent replay: hand back the record of the cancellation
		// that already happened.
		if rec, err := s.refundRepo.GetByBookingID(ctx, bookingID); err == nil {
			return rec, nil
		}
		return nil, fmt.Errorf("%w: booking %d is already cancelled", domain.ErrNotCancellable, bookingID)
	}
	if !b.Status.Cancellable() {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrNotCancellable, bookingID, b.Status)
	}

	now := s.clock.Now()
	refund, err := s.calc.ComputeRefund(policy.Tier(b.PolicyTier), b.AmountCents, b.EventTime, now, forceMajeure)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	rec := &domain.RefundRecord{
		BookingID:           b.ID,
		Reference:           uuid.NewString(),
		OriginalAmountCents: b.AmountCents,
		RefundPercent:       refund.Percent,
		RefundAmountCents:   refund.AmountCents,
		Currency:            b.Currency,
		PolicyTier:          b.PolicyTier,
		ForceMajeure:        forceMajeure,
		PaymentRef:          b.PaymentRef,
		ComputedAt:          now,
		ProcessingStatus:    domain.RefundProcessingPending,
	}

	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.Transition(ctx, b.ID, b.Status, domain.BookingStatusCancelled); err != nil {
			return err
		}
		if err := r.Bookings.SetCancellation(ctx, b.ID, reason, actorID); err != nil {
			return fmt.Errorf("%w: record cancellation: %v", domain.ErrTransientFailure, err)
		}
		return r.Refunds.Create(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrAlreadyExists) {
			// Another actor may have finished the cancellation while we
			// raced it; its committed record is the answer.
			if existing, getErr := s.refundRepo.GetByBookingID(ctx, bookingID); getErr == nil {
				return existing, nil
			}
			return nil, err
		}
		if errors.Is(err, domain.ErrTransientFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cancel booking %d: %v", domain.ErrTransientFailure, bookingID, err)
	}

	logger.Info("Booking cancelled", "booking_id", b.ID, "refund_reference", rec.Reference, "refund_percent", rec.RefundPercent, "refund_amount_cents", rec.RefundAmountCents, "force_majeure", forceMajeure)

	if s.refundSvc != nil {
		// Processor call stays outside the transaction boundary.
		go func(rec domain.RefundRecord) {
			if err := s.refundSvc.SubmitRefund(context.Background(), &rec); err != nil {
				logger.Error("Refund submission failed, retry job will resubmit", "refund_reference", rec.Reference, "error", err)
			}
		}(*rec)
	}
	return rec, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED once the calling
// layer has captured payment, keeping the processor's payment reference
// for later refunds.
func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID, actorID int64, paymentRef string) error {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if actorID != b.ClientID && actorID != b.ProviderID {
		return fmt.Errorf("%w: actor %d is not a party to booking %d", domain.ErrInvalidRequest, actorID, bookingID)
	}
	if err := s.bookingRepo.Transition(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusConfirmed); err != nil {
		return err
	}
	if paymentRef != "" {
		if err := s.bookingRepo.SetPaymentRef(ctx, bookingID, paymentRef); err != nil {
			return fmt.Errorf("%w: record payment reference: %v", domain.ErrTransientFailure, err)
		}
	}
	return nil
}

func (s *bookingService) StartBooking(ctx context.Context, bookingID, providerID int64) error {
	return s.providerTransition(ctx, bookingID, providerID, domain.BookingStatusConfirmed, domain.BookingStatusInProgress)
}

func (s *bookingService) CompleteBooking(ctx context.Context, bookingID, providerID int64) error {
	return s.providerTransition(ctx, bookingID, providerID, domain.BookingStatusInProgress, domain.BookingStatusCompleted)
}

func (s *bookingService) providerTransition(ctx context.Context, bookingID, providerID int64, from, to domain.BookingStatus) error {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.ProviderID != providerID {
		return fmt.Errorf("%w: booking %d does not belong to provider %d", domain.ErrInvalidRequest, bookingID, providerID)
	}
	return s.bookingRepo.Transition(ctx, bookingID, from, to)
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) ListByClient(ctx context.Context, clientID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByClient(ctx, clientID, status, page, pageSize)
}

func (s *bookingService) ListByProvider(ctx context.Context, providerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByProvider(ctx, providerID, status, page, pageSize)
}
