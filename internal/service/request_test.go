package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/policy"
	"servibook-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	table := policy.DefaultTable()

	t.Run("Success", func(t *testing.T) {
		requestRepo := new(MockRequestRepository)
		svc := service.NewRequestService(requestRepo, new(MockQuoteRepository), table, clock)

		requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.ServiceRequest")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.ServiceRequest).ID = 7
		}).Return(nil)

		req, err := svc.CreateRequest(ctx, 1, "catering", "dinner for forty", clock.now.Add(30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(7), req.ID)
	})

	t.Run("Rejects past event time", func(t *testing.T) {
		svc := service.NewRequestService(new(MockRequestRepository), new(MockQuoteRepository), table, clock)

		_, err := svc.CreateRequest(ctx, 1, "catering", "", clock.now.Add(-time.Hour))
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("Rejects blank category", func(t *testing.T) {
		svc := service.NewRequestService(new(MockRequestRepository), new(MockQuoteRepository), table, clock)

		_, err := svc.CreateRequest(ctx, 1, "   ", "", clock.now.Add(time.Hour))
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})
}

func TestRequestService_SubmitQuote(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	table := policy.DefaultTable()
	eventTime := time.Date(2026, 4, 10, 14, 0, 0, 0, time.UTC)

	openRequest := &domain.ServiceRequest{ID: 7, ClientID: 1, Category: "catering", EventTime: eventTime}

	t.Run("Snapshots the request into the quote", func(t *testing.T) {
		requestRepo := new(MockRequestRepository)
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewRequestService(requestRepo, quoteRepo, table, clock)

		requestRepo.On("GetByID", ctx, int64(7)).Return(openRequest, nil)
		quoteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Quote")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Quote).ID = 10
		}).Return(nil)

		q, err := svc.SubmitQuote(ctx, 7, 102, 30000, "", policy.TierModerate, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), q.ClientID)
		assert.Equal(t, eventTime, q.EventTime)
		assert.Equal(t, "EUR", q.Currency)
		assert.Equal(t, domain.QuoteStatusSent, q.Status)
	})

	t.Run("Unknown policy tier", func(t *testing.T) {
		svc := service.NewRequestService(new(MockRequestRepository), new(MockQuoteRepository), table, clock)

		_, err := svc.SubmitQuote(ctx, 7, 102, 30000, "EUR", policy.Tier("LENIENT"), nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("Closed request takes no more quotes", func(t *testing.T) {
		requestRepo := new(MockRequestRepository)
		svc := service.NewRequestService(requestRepo, new(MockQuoteRepository), table, clock)

		closed := &domain.ServiceRequest{ID: 8, ClientID: 1, Category: "catering", EventTime: eventTime, Closed: true}
		requestRepo.On("GetByID", ctx, int64(8)).Return(closed, nil)

		_, err := svc.SubmitQuote(ctx, 8, 102, 30000, "EUR", policy.TierModerate, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})
}

func TestRequestService_CloseRequest(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	table := policy.DefaultTable()

	t.Run("Closes when nothing was accepted", func(t *testing.T) {
		requestRepo := new(MockRequestRepository)
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewRequestService(requestRepo, quoteRepo, table, clock)

		requestRepo.On("GetByID", ctx, int64(7)).Return(&domain.ServiceRequest{ID: 7, ClientID: 1}, nil)
		quoteRepo.On("ListByRequest", ctx, int64(7)).Return([]domain.Quote{{ID: 10, Status: domain.QuoteStatusRefused}}, nil)
		requestRepo.On("Close", ctx, int64(7)).Return(nil)

		assert.NoError(t, svc.CloseRequest(ctx, 7, 1))
		requestRepo.AssertExpectations(t)
	})

	t.Run("Refuses while an accepted quote exists", func(t *testing.T) {
		requestRepo := new(MockRequestRepository)
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewRequestService(requestRepo, quoteRepo, table, clock)

		requestRepo.On("GetByID", ctx, int64(7)).Return(&domain.ServiceRequest{ID: 7, ClientID: 1}, nil)
		quoteRepo.On("ListByRequest", ctx, int64(7)).Return([]domain.Quote{{ID: 10, Status: domain.QuoteStatusAccepted}}, nil)

		err := svc.CloseRequest(ctx, 7, 1)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
		requestRepo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything)
	})
}
