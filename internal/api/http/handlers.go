package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/policy"
	"servibook-backend/internal/service"

	"github.com/gorilla/mux"
)

// Handler exposes the booking core over HTTP. Authentication is handled
// by the layer in front; actor identity arrives in the X-Actor-ID header.
type Handler struct {
	requests service.RequestService
	quotes   service.QuoteService
	bookings service.BookingService
	refunds  service.RefundService
}

func NewHandler(requests service.RequestService, quotes service.QuoteService, bookings service.BookingService, refunds service.RefundService) *Handler {
	return &Handler{
		requests: requests,
		quotes:   quotes,
		bookings: bookings,
		refunds:  refunds,
	}
}

// Register mounts all API routes on the router.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/requests", h.CreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}", h.GetRequest).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/close", h.CloseRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/quotes", h.SubmitQuote).Methods(http.MethodPost)
	api.HandleFunc("/quotes/{id}/view", h.ViewQuote).Methods(http.MethodPost)
	api.HandleFunc("/quotes/{id}/accept", h.AcceptQuote).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/confirm", h.ConfirmBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/start", h.StartBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/complete", h.CompleteBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/refund", h.GetRefund).Methods(http.MethodGet)
}

type createRequestBody struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	EventTime   time.Time `json:"event_time"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var body createRequestBody
	if !decode(w, r, &body) {
		return
	}
	req, err := h.requests.CreateRequest(r.Context(), actorID, body.Category, body.Description, body.EventTime)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, quotes, err := h.requests.GetRequest(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"request": req, "quotes": quotes})
}

func (h *Handler) CloseRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.requests.CloseRequest(r.Context(), id, actorID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitQuoteBody struct {
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	PolicyTier  string     `json:"policy_tier"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (h *Handler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var body submitQuoteBody
	if !decode(w, r, &body) {
		return
	}
	q, err := h.requests.SubmitQuote(r.Context(), requestID, actorID, body.AmountCents, body.Currency, policy.Tier(body.PolicyTier), body.ExpiresAt)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

func (h *Handler) ViewQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.quotes.MarkViewed(r.Context(), quoteID, actorID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type acceptQuoteBody struct {
	RequestID int64 `json:"request_id"`
}

func (h *Handler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var body acceptQuoteBody
	if !decode(w, r, &body) {
		return
	}
	booking, err := h.quotes.AcceptQuote(r.Context(), body.RequestID, quoteID, actorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	booking, err := h.bookings.GetBooking(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

type confirmBookingBody struct {
	PaymentRef string `json:"payment_ref"`
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var body confirmBookingBody
	if !decode(w, r, &body) {
		return
	}
	if err := h.bookings.ConfirmBooking(r.Context(), id, actorID, body.PaymentRef); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StartBooking(w http.ResponseWriter, r *http.Request) {
	h.providerTransition(w, r, h.bookings.StartBooking)
}

func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.providerTransition(w, r, h.bookings.CompleteBooking)
}

func (h *Handler) providerTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, bookingID, providerID int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id, actorID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cancelBookingBody struct {
	Reason       string `json:"reason"`
	ForceMajeure bool   `json:"force_majeure"`
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var body cancelBookingBody
	if !decode(w, r, &body) {
		return
	}
	rec, err := h.bookings.CancelBooking(r.Context(), id, actorID, body.Reason, body.ForceMajeure)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) GetRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.refunds.GetRefundForBooking(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func actor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "missing or invalid X-Actor-ID header", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// respondError maps the core error taxonomy to HTTP status codes. The
// client guidance: 409 targets are resolved (re-fetch and move on), 503
// is safe to retry with backoff.
func respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAcceptable), errors.Is(err, domain.ErrNotCancellable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExpired):
		status = http.StatusGone
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTransientFailure):
		status = http.StatusServiceUnavailable
	default:
		logger.Error("Unhandled error", "error", err)
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
