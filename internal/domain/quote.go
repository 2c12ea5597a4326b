package domain

import "time"

type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusViewed   QuoteStatus = "VIEWED"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRefused  QuoteStatus = "REFUSED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

type Quote struct {
	ID         int64  `json:"id"`
	RequestID  int64  `json:"request_id"`
	ProviderID int64  `json:"provider_id"`
	ClientID   int64  `json:"client_id"`
	// Snapshot fields, captured from the service request when the quote
	// is submitted. Booking creation copies these, never re-reads.
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	PolicyTier  string      `json:"policy_tier"`
	EventTime   time.Time   `json:"event_time"`
	IssuedAt    time.Time   `json:"issued_at"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	Status      QuoteStatus `json:"status"`
	UpdatedOn   time.Time   `json:"updated_on"`
}

// IsTerminal reports whether the stored status can never transition again.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRefused || s == QuoteStatusExpired
}

// Open reports whether the status still allows acceptance or refusal.
func (s QuoteStatus) Open() bool {
	return s == QuoteStatusSent || s == QuoteStatusViewed
}

// PastExpiry reports whether the quote's validity window has elapsed at
// the given instant. Quotes without an expiry never lapse.
func (q *Quote) PastExpiry(now time.Time) bool {
	return q.ExpiresAt != nil && q.ExpiresAt.Before(now)
}

// EffectiveStatus is the lazy-expiry-adjusted status: a quote past its
// expiry reads as EXPIRED even before the sweep updates the row.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status.Open() && q.PastExpiry(now) {
		return QuoteStatusExpired
	}
	return q.Status
}
