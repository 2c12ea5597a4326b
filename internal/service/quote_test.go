package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/repository"
	"servibook-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sentQuote(id, requestID int64, amountCents int64) *domain.Quote {
	return &domain.Quote{
		ID:          id,
		RequestID:   requestID,
		ProviderID:  100 + id,
		ClientID:    1,
		AmountCents: amountCents,
		Currency:    "EUR",
		PolicyTier:  "MODERATE",
		EventTime:   time.Date(2026, 4, 10, 14, 0, 0, 0, time.UTC),
		IssuedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:      domain.QuoteStatusSent,
	}
}

func TestQuoteService_AcceptQuote(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock{now: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)}

	t.Run("Accepts, refuses open siblings and creates the booking", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		bookingRepo := new(MockBookingRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo, Bookings: bookingRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		accepted := sentQuote(10, 7, 30000)
		sibling := sentQuote(11, 7, 25000)
		sibling.Status = domain.QuoteStatusViewed
		refused := sentQuote(12, 7, 40000)
		refused.Status = domain.QuoteStatusRefused

		quoteRepo.On("GetByID", ctx, int64(10)).Return(accepted, nil)
		quoteRepo.On("Transition", ctx, int64(10), domain.QuoteStatusSent, domain.QuoteStatusAccepted).Return(nil)
		quoteRepo.On("ListByRequest", ctx, int64(7)).Return([]domain.Quote{*accepted, *sibling, *refused}, nil)
		quoteRepo.On("Transition", ctx, int64(11), domain.QuoteStatusViewed, domain.QuoteStatusRefused).Return(nil)
		bookingRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Booking).ID = 55
		}).Return(nil)

		booking, err := svc.AcceptQuote(ctx, 7, 10, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(55), booking.ID)
		assert.Equal(t, int64(10), booking.QuoteID)
		assert.Equal(t, int64(30000), booking.AmountCents)
		assert.Equal(t, "MODERATE", booking.PolicyTier)
		assert.Equal(t, domain.BookingStatusPending, booking.Status)
		quoteRepo.AssertExpectations(t)
		bookingRepo.AssertExpectations(t)
		// The already-refused sibling must not be touched.
		quoteRepo.AssertNotCalled(t, "Transition", ctx, int64(12), mock.Anything, mock.Anything)
	})

	t.Run("Quote from another request", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(sentQuote(10, 7, 30000), nil)

		_, err := svc.AcceptQuote(ctx, 99, 10, 1)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("Actor is not the requesting client", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(sentQuote(10, 7, 30000), nil)

		_, err := svc.AcceptQuote(ctx, 7, 10, 42)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("Refused quote is not acceptable", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		q := sentQuote(10, 7, 30000)
		q.Status = domain.QuoteStatusRefused
		quoteRepo.On("GetByID", ctx, int64(10)).Return(q, nil)

		_, err := svc.AcceptQuote(ctx, 7, 10, 1)
		assert.True(t, errors.Is(err, domain.ErrNotAcceptable))
		quoteRepo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Stored SENT quote past its expiry", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		q := sentQuote(10, 7, 30000)
		expired := clock.now.Add(-time.Hour)
		q.ExpiresAt = &expired
		quoteRepo.On("GetByID", ctx, int64(10)).Return(q, nil)

		_, err := svc.AcceptQuote(ctx, 7, 10, 1)
		assert.True(t, errors.Is(err, domain.ErrExpired))
		quoteRepo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lost acceptance race", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		bookingRepo := new(MockBookingRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo, Bookings: bookingRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(sentQuote(10, 7, 30000), nil)
		quoteRepo.On("Transition", ctx, int64(10), domain.QuoteStatusSent, domain.QuoteStatusAccepted).
			Return(domain.ErrConflict)

		_, err := svc.AcceptQuote(ctx, 7, 10, 1)
		assert.True(t, errors.Is(err, domain.ErrConflict))
		bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Sibling refusal failure rolls back as transient", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		bookingRepo := new(MockBookingRepository)
		tx := &stubTxRunner{repos: repository.Repositories{Quotes: quoteRepo, Bookings: bookingRepo}}
		svc := service.NewQuoteService(quoteRepo, tx, clock)

		accepted := sentQuote(10, 7, 30000)
		sibling := sentQuote(11, 7, 25000)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(accepted, nil)
		quoteRepo.On("Transition", ctx, int64(10), domain.QuoteStatusSent, domain.QuoteStatusAccepted).Return(nil)
		quoteRepo.On("ListByRequest", ctx, int64(7)).Return([]domain.Quote{*accepted, *sibling}, nil)
		quoteRepo.On("Transition", ctx, int64(11), domain.QuoteStatusSent, domain.QuoteStatusRefused).
			Return(domain.ErrConflict)

		_, err := svc.AcceptQuote(ctx, 7, 10, 1)
		assert.True(t, errors.Is(err, domain.ErrTransientFailure))
		bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_MarkViewed(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock{now: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)}

	t.Run("Marks a SENT quote viewed", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewQuoteService(quoteRepo, &stubTxRunner{}, clock)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(sentQuote(10, 7, 30000), nil)
		quoteRepo.On("Transition", ctx, int64(10), domain.QuoteStatusSent, domain.QuoteStatusViewed).Return(nil)

		assert.NoError(t, svc.MarkViewed(ctx, 10, 1))
		quoteRepo.AssertExpectations(t)
	})

	t.Run("Losing the race is not an error", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewQuoteService(quoteRepo, &stubTxRunner{}, clock)

		quoteRepo.On("GetByID", ctx, int64(10)).Return(sentQuote(10, 7, 30000), nil)
		quoteRepo.On("Transition", ctx, int64(10), domain.QuoteStatusSent, domain.QuoteStatusViewed).
			Return(domain.ErrConflict)

		assert.NoError(t, svc.MarkViewed(ctx, 10, 1))
	})

	t.Run("Already viewed is a no-op", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		svc := service.NewQuoteService(quoteRepo, &stubTxRunner{}, clock)

		q := sentQuote(10, 7, 30000)
		q.Status = domain.QuoteStatusViewed
		quoteRepo.On("GetByID", ctx, int64(10)).Return(q, nil)

		assert.NoError(t, svc.MarkViewed(ctx, 10, 1))
		quoteRepo.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
