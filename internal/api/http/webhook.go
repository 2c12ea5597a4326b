package http

import (
	"io"
	"net/http"

	"servibook-backend/internal/logger"
	"servibook-backend/internal/payment"
	"servibook-backend/internal/service"

	"github.com/gorilla/mux"
)

const maxWebhookBodyBytes = 64 * 1024

// WebhookHandler receives asynchronous refund outcomes from the payment
// processor. The coordinator never polls; this is the only path by which
// a refund record leaves PROCESSING.
type WebhookHandler struct {
	processor *payment.StripeProcessor
	refunds   service.RefundService
}

func NewWebhookHandler(processor *payment.StripeProcessor, refunds service.RefundService) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		refunds:   refunds,
	}
}

func (h *WebhookHandler) Register(r *mux.Router) {
	r.HandleFunc("/webhooks/payment", h.HandlePaymentEvent).Methods(http.MethodPost)
}

func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	update, err := h.processor.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn("Rejected payment webhook", "error", err)
		http.Error(w, "invalid webhook", http.StatusBadRequest)
		return
	}
	if update == nil {
		// Event not about one of our refunds; acknowledge so the
		// processor stops redelivering it.
		w.WriteHeader(http.StatusOK)
		return
	}

	err = h.refunds.ApplyProcessorUpdate(r.Context(), service.ProcessorUpdate{
		Reference:     update.Reference,
		ProcessorRef:  update.ProcessorRef,
		Status:        update.Status,
		FailureReason: update.FailureReason,
	})
	if err != nil {
		logger.Error("Failed to apply refund update", "reference", update.Reference, "error", err)
		// Non-2xx makes the processor redeliver; the update is
		// idempotent so that is safe.
		http.Error(w, "failed to apply update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
