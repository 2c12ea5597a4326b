package repository

import (
	"context"
	"time"

	"servibook-backend/internal/domain"
)

type RequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	Close(ctx context.Context, id int64) error
}

type QuoteRepository interface {
	Create(ctx context.Context, q *domain.Quote) error
	GetByID(ctx context.Context, id int64) (*domain.Quote, error)
	// ListByRequest returns every quote for a request, any status,
	// ordered by issue time ascending. Empty result is not an error.
	ListByRequest(ctx context.Context, requestID int64) ([]domain.Quote, error)
	// Transition is a conditional check-and-set: it succeeds only if the
	// stored status still equals from at the moment of the write, and
	// returns domain.ErrConflict otherwise. The check and the write are a
	// single UPDATE statement, never a read followed by a write.
	Transition(ctx context.Context, id int64, from, to domain.QuoteStatus) error
	// ExpireDue sweeps open quotes past their expiry. Purely advisory;
	// expiry is also evaluated on every read.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type BookingRepository interface {
	// Create inserts a PENDING booking built from a quote snapshot.
	// Returns domain.ErrAlreadyExists if a booking already references
	// the same quote.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByQuoteID(ctx context.Context, quoteID int64) (*domain.Booking, error)
	// Transition has the same conditional-update contract as
	// QuoteRepository.Transition.
	Transition(ctx context.Context, id int64, from, to domain.BookingStatus) error
	SetCancellation(ctx context.Context, id int64, reason string, cancelledBy int64) error
	SetPaymentRef(ctx context.Context, id int64, paymentRef string) error
	ListByClient(ctx context.Context, clientID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByProvider(ctx context.Context, providerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

// RefundRepository is the append-only refund ledger. Records are never
// deleted; only their processing status moves.
type RefundRepository interface {
	// Create inserts a new record. Returns domain.ErrAlreadyExists if a
	// record already references the same booking.
	Create(ctx context.Context, r *domain.RefundRecord) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.RefundRecord, error)
	GetByReference(ctx context.Context, reference string) (*domain.RefundRecord, error)
	ListByProcessingStatus(ctx context.Context, status domain.RefundProcessingStatus, limit int32) ([]domain.RefundRecord, error)
	// TransitionProcessing conditionally moves the processing status,
	// recording the processor reference and failure reason when given.
	TransitionProcessing(ctx context.Context, id int64, from, to domain.RefundProcessingStatus, processorRef, failureReason string) error
}

// Repositories bundles every repository bound to one execution scope,
// either the shared pool or a single transaction.
type Repositories struct {
	Requests RequestRepository
	Quotes   QuoteRepository
	Bookings BookingRepository
	Refunds  RefundRepository
}

// TxRunner executes fn against repositories bound to one database
// transaction. Any error from fn rolls the whole transaction back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r *Repositories) error) error
}
