package service

import (
	"context"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/policy"
)

// Clock supplies the current time for expiry checks and cancellation
// timestamps. Injectable so tests are deterministic.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }

type RequestService interface {
	CreateRequest(ctx context.Context, clientID int64, category, description string, eventTime time.Time) (*domain.ServiceRequest, error)
	GetRequest(ctx context.Context, id int64) (*domain.ServiceRequest, []domain.Quote, error)
	SubmitQuote(ctx context.Context, requestID, providerID, amountCents int64, currency string, tier policy.Tier, expiresAt *time.Time) (*domain.Quote, error)
	CloseRequest(ctx context.Context, id, clientID int64) error
}

type QuoteService interface {
	// AcceptQuote atomically accepts one quote, refuses its open
	// siblings and creates the booking. Exactly one acceptance can ever
	// succeed per request.
	AcceptQuote(ctx context.Context, requestID, quoteID, actorID int64) (*domain.Booking, error)
	MarkViewed(ctx context.Context, quoteID, actorID int64) error
	ListQuotes(ctx context.Context, requestID int64) ([]domain.Quote, error)
}

type BookingService interface {
	// CancelBooking cancels the booking, computes the refund for its
	// policy tier and persists the refund record. Calling it again for
	// the same booking returns the existing record.
	CancelBooking(ctx context.Context, bookingID, actorID int64, reason string, forceMajeure bool) (*domain.RefundRecord, error)
	ConfirmBooking(ctx context.Context, bookingID, actorID int64, paymentRef string) error
	StartBooking(ctx context.Context, bookingID, providerID int64) error
	CompleteBooking(ctx context.Context, bookingID, providerID int64) error
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ListByClient(ctx context.Context, clientID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByProvider(ctx context.Context, providerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type RefundService interface {
	// SubmitRefund hands a PENDING or FAILED record to the payment
	// processor. Called outside any database transaction.
	SubmitRefund(ctx context.Context, rec *domain.RefundRecord) error
	// ApplyProcessorUpdate persists an asynchronous outcome delivered on
	// the payment webhook. Duplicate deliveries are ignored.
	ApplyProcessorUpdate(ctx context.Context, update ProcessorUpdate) error
	GetRefundForBooking(ctx context.Context, bookingID int64) (*domain.RefundRecord, error)
	// RetryFailedRefunds resubmits FAILED records to the processor,
	// never creating new ones. Returns the number resubmitted.
	RetryFailedRefunds(ctx context.Context) (int, error)
}

// ProcessorUpdate is a payment-processor outcome for one refund record.
type ProcessorUpdate struct {
	Reference     string
	ProcessorRef  string
	Status        domain.RefundProcessingStatus
	FailureReason string
}
