package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/policy"
	"servibook-backend/internal/repository"
)

type requestService struct {
	requestRepo repository.RequestRepository
	quoteRepo   repository.QuoteRepository
	table       *policy.Table
	clock       Clock
}

func NewRequestService(requestRepo repository.RequestRepository, quoteRepo repository.QuoteRepository, table *policy.Table, clock Clock) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		quoteRepo:   quoteRepo,
		table:       table,
		clock:       clock,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, clientID int64, category, description string, eventTime time.Time) (*domain.ServiceRequest, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: missing client", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: missing category", domain.ErrInvalidRequest)
	}
	if !eventTime.After(s.clock.Now()) {
		return nil, fmt.Errorf("%w: event time must be in the future", domain.ErrInvalidRequest)
	}

	req := &domain.ServiceRequest{
		ClientID:    clientID,
		Category:    category,
		Description: description,
		EventTime:   eventTime,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) GetRequest(ctx context.Context, id int64) (*domain.ServiceRequest, []domain.Quote, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	quotes, err := s.quoteRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return req, quotes, nil
}

func (s *requestService) SubmitQuote(ctx context.Context, requestID, providerID, amountCents int64, currency string, tier policy.Tier, expiresAt *time.Time) (*domain.Quote, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: quote amount must be positive", domain.ErrInvalidRequest)
	}
	if _, err := s.table.Rules(tier); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Closed {
		return nil, fmt.Errorf("%w: request %d is closed", domain.ErrInvalidRequest, requestID)
	}

	now := s.clock.Now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", domain.ErrInvalidRequest)
	}
	if currency == "" {
		currency = "EUR"
	}

	q := &domain.Quote{
		RequestID:   requestID,
		ProviderID:  providerID,
		ClientID:    req.ClientID,
		AmountCents: amountCents,
		Currency:    currency,
		PolicyTier:  string(tier),
		EventTime:   req.EventTime,
		IssuedAt:    now,
		ExpiresAt:   expiresAt,
		Status:      domain.QuoteStatusSent,
	}
	if err := s.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// CloseRequest marks a request terminally closed. Requests that already
// produced an accepted quote stay open through the booking lifecycle.
func (s *requestService) CloseRequest(ctx context.Context, id, clientID int64) error {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.ClientID != clientID {
		return fmt.Errorf("%w: request %d does not belong to client %d", domain.ErrInvalidRequest, id, clientID)
	}
	if req.Closed {
		return nil
	}

	quotes, err := s.quoteRepo.ListByRequest(ctx, id)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		if q.Status == domain.QuoteStatusAccepted {
			return fmt.Errorf("%w: request %d has an accepted quote", domain.ErrInvalidRequest, id)
		}
	}
	return s.requestRepo.Close(ctx, id)
}
