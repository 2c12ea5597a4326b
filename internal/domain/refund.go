package domain

import "time"

// RefundProcessingStatus tracks the external payment processor's handling
// of a refund, independent of the booking's own status.
// Allowed flow: PENDING → PROCESSING → {COMPLETED | FAILED}.
// FAILED may return to PROCESSING when the same record is resubmitted.
type RefundProcessingStatus string

const (
	RefundProcessingPending    RefundProcessingStatus = "PENDING"
	RefundProcessingProcessing RefundProcessingStatus = "PROCESSING"
	RefundProcessingCompleted  RefundProcessingStatus = "COMPLETED"
	RefundProcessingFailed     RefundProcessingStatus = "FAILED"
	RefundProcessingCancelled  RefundProcessingStatus = "CANCELLED"
)

// RefundRecord is the append-only audit record of a refund decision.
// At most one exists per booking, enforced by a unique constraint.
type RefundRecord struct {
	ID        int64 `json:"id"`
	BookingID int64 `json:"booking_id"`
	// Reference is the stable external identifier handed to the payment
	// processor, also used as its idempotency key.
	Reference           string                 `json:"reference"`
	OriginalAmountCents int64                  `json:"original_amount_cents"`
	RefundPercent       int                    `json:"refund_percent"`
	RefundAmountCents   int64                  `json:"refund_amount_cents"`
	Currency            string                 `json:"currency"`
	PolicyTier          string                 `json:"policy_tier"`
	ForceMajeure        bool                   `json:"force_majeure"`
	PaymentRef          string                 `json:"payment_ref,omitempty"`
	ComputedAt          time.Time              `json:"computed_at"`
	ProcessingStatus    RefundProcessingStatus `json:"processing_status"`
	ProcessorRef        string                 `json:"processor_ref,omitempty"`
	FailureReason       string                 `json:"failure_reason,omitempty"`
	CreatedOn           time.Time              `json:"created_on"`
	UpdatedOn           time.Time              `json:"updated_on"`
}
