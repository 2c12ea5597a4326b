package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
	BookingStatusDisputed   BookingStatus = "DISPUTED"
)

type Booking struct {
	ID         int64 `json:"id"`
	QuoteID    int64 `json:"quote_id"`
	RequestID  int64 `json:"request_id"`
	ClientID   int64 `json:"client_id"`
	ProviderID int64 `json:"provider_id"`
	// Amount and event time are snapshots from the accepted quote.
	// They never change after creation; refunds are recorded separately.
	AmountCents  int64         `json:"amount_cents"`
	Currency     string        `json:"currency"`
	PolicyTier   string        `json:"policy_tier"`
	EventTime    time.Time     `json:"event_time"`
	Status       BookingStatus `json:"status"`
	PaymentRef   string        `json:"payment_ref,omitempty"`
	CancelReason string        `json:"cancel_reason,omitempty"`
	CancelledBy  *int64        `json:"cancelled_by,omitempty"`
	CreatedOn    time.Time     `json:"created_on"`
	UpdatedOn    time.Time     `json:"updated_on"`
}

// Cancellable reports whether the booking may still be cancelled.
// Completed, already-cancelled and disputed bookings may not.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// NewBookingFromQuote builds a PENDING booking from an accepted quote
// snapshot. The caller persists it; the quote is not re-read afterwards.
func NewBookingFromQuote(q *Quote) *Booking {
	return &Booking{
		QuoteID:     q.ID,
		RequestID:   q.RequestID,
		ClientID:    q.ClientID,
		ProviderID:  q.ProviderID,
		AmountCents: q.AmountCents,
		Currency:    q.Currency,
		PolicyTier:  q.PolicyTier,
		EventTime:   q.EventTime,
		Status:      BookingStatusPending,
	}
}
