package payment

import (
	"context"

	"servibook-backend/internal/domain"
)

// Processor initiates refunds with the external payment provider. The
// outcome arrives asynchronously on the webhook, never by polling.
type Processor interface {
	// SubmitRefund asks the provider to refund the record's amount
	// against its original payment. It returns the provider's reference
	// for the refund attempt. Resubmitting the same record is safe: the
	// record's reference doubles as the idempotency key.
	SubmitRefund(ctx context.Context, rec *domain.RefundRecord) (string, error)
}

// RefundUpdate is a provider-side status change delivered on the webhook.
type RefundUpdate struct {
	// Reference is our refund record reference, echoed back through the
	// provider's metadata.
	Reference     string
	ProcessorRef  string
	Status        domain.RefundProcessingStatus
	FailureReason string
}
