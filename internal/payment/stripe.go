package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

const metadataReferenceKey = "refund_reference"

// StripeProcessor submits refunds through the Stripe API.
type StripeProcessor struct {
	webhookSecret string
}

func NewStripeProcessor(apiKey, webhookSecret string) *StripeProcessor {
	stripe.Key = apiKey
	return &StripeProcessor{webhookSecret: webhookSecret}
}

func (p *StripeProcessor) SubmitRefund(ctx context.Context, rec *domain.RefundRecord) (string, error) {
	if rec.PaymentRef == "" {
		return "", fmt.Errorf("refund %s: booking has no payment reference", rec.Reference)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(rec.PaymentRef),
		Amount:        stripe.Int64(rec.RefundAmountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey(rec.Reference)
	params.AddMetadata(metadataReferenceKey, rec.Reference)

	logger.ExternalServiceCall("stripe", "refund.New", "reference", rec.Reference, "amount_cents", rec.RefundAmountCents)
	r, err := refund.New(params)
	logger.ExternalServiceResult("stripe", "refund.New", err, "reference", rec.Reference)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// ParseWebhook verifies a Stripe webhook signature and extracts the refund
// update it carries, if any. A nil update means the event is not about a
// refund and should be acknowledged without action.
func (p *StripeProcessor) ParseWebhook(payload []byte, sigHeader string) (*RefundUpdate, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification: %w", err)
	}
	return refundUpdateFromEvent(event)
}

func refundUpdateFromEvent(event stripe.Event) (*RefundUpdate, error) {
	switch event.Type {
	case "charge.refund.updated", "refund.updated", "refund.created", "refund.failed":
	default:
		return nil, nil
	}

	var r stripe.Refund
	if err := json.Unmarshal(event.Data.Raw, &r); err != nil {
		return nil, fmt.Errorf("decode refund event: %w", err)
	}

	reference := r.Metadata[metadataReferenceKey]
	if reference == "" {
		// Refund not initiated by this service.
		return nil, nil
	}

	update := &RefundUpdate{
		Reference:    reference,
		ProcessorRef: r.ID,
	}
	switch r.Status {
	case stripe.RefundStatusSucceeded:
		update.Status = domain.RefundProcessingCompleted
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		update.Status = domain.RefundProcessingFailed
		update.FailureReason = string(r.FailureReason)
	default:
		update.Status = domain.RefundProcessingProcessing
	}
	return update, nil
}
