package service

import (
	"context"
	"errors"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/payment"
	"servibook-backend/internal/repository"
)

type refundService struct {
	refundRepo repository.RefundRepository
	processor  payment.Processor
}

func NewRefundService(refundRepo repository.RefundRepository, processor payment.Processor) RefundService {
	return &refundService{
		refundRepo: refundRepo,
		processor:  processor,
	}
}

// SubmitRefund moves the record to PROCESSING and hands it to the
// processor. The PENDING→PROCESSING (or FAILED→PROCESSING on retry)
// check-and-set makes concurrent submitters harmless: only one proceeds.
func (s *refundService) SubmitRefund(ctx context.Context, rec *domain.RefundRecord) error {
	from := rec.ProcessingStatus
	if from != domain.RefundProcessingPending && from != domain.RefundProcessingFailed {
		return nil
	}
	if err := s.refundRepo.TransitionProcessing(ctx, rec.ID, from, domain.RefundProcessingProcessing, "", ""); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Someone else already took it.
			return nil
		}
		return err
	}

	if rec.RefundAmountCents == 0 {
		// Nothing for the processor to move; settle the record locally.
		return s.refundRepo.TransitionProcessing(ctx, rec.ID, domain.RefundProcessingProcessing, domain.RefundProcessingCompleted, "", "")
	}

	processorRef, err := s.processor.SubmitRefund(ctx, rec)
	if err != nil {
		if tErr := s.refundRepo.TransitionProcessing(ctx, rec.ID, domain.RefundProcessingProcessing, domain.RefundProcessingFailed, "", err.Error()); tErr != nil {
			logger.Error("Failed to mark refund submission failure", "refund_reference", rec.Reference, "error", tErr)
		}
		return err
	}

	// Same-status update just records the processor's reference; the
	// terminal outcome arrives on the webhook.
	return s.refundRepo.TransitionProcessing(ctx, rec.ID, domain.RefundProcessingProcessing, domain.RefundProcessingProcessing, processorRef, "")
}

// ApplyProcessorUpdate persists a webhook outcome. COMPLETED and CANCELLED
// records are terminal; late or duplicate deliveries for them are ignored.
func (s *refundService) ApplyProcessorUpdate(ctx context.Context, update ProcessorUpdate) error {
	rec, err := s.refundRepo.GetByReference(ctx, update.Reference)
	if err != nil {
		return err
	}
	if rec.ProcessingStatus == domain.RefundProcessingCompleted || rec.ProcessingStatus == domain.RefundProcessingCancelled {
		return nil
	}
	if rec.ProcessingStatus == update.Status && update.Status != domain.RefundProcessingProcessing {
		return nil
	}

	err = s.refundRepo.TransitionProcessing(ctx, rec.ID, rec.ProcessingStatus, update.Status, update.ProcessorRef, update.FailureReason)
	if errors.Is(err, domain.ErrConflict) {
		// Raced another delivery of the same outcome.
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Refund processing status updated", "refund_reference", update.Reference, "status", update.Status, "processor_ref", update.ProcessorRef)
	return nil
}

func (s *refundService) GetRefundForBooking(ctx context.Context, bookingID int64) (*domain.RefundRecord, error) {
	return s.refundRepo.GetByBookingID(ctx, bookingID)
}

// RetryFailedRefunds resubmits FAILED records. A failed refund is always
// retried as the same record; a second record per booking cannot exist.
func (s *refundService) RetryFailedRefunds(ctx context.Context) (int, error) {
	failed, err := s.refundRepo.ListByProcessingStatus(ctx, domain.RefundProcessingFailed, 100)
	if err != nil {
		return 0, err
	}

	retried := 0
	for i := range failed {
		rec := &failed[i]
		if err := s.SubmitRefund(ctx, rec); err != nil {
			logger.Warn("Refund retry failed", "refund_reference", rec.Reference, "error", err)
			continue
		}
		retried++
	}
	return retried, nil
}
