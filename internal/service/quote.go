package service

import (
	"context"
	"errors"
	"fmt"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/logger"
	"servibook-backend/internal/repository"
)

type quoteService struct {
	quoteRepo repository.QuoteRepository
	tx        repository.TxRunner
	clock     Clock
}

func NewQuoteService(quoteRepo repository.QuoteRepository, tx repository.TxRunner, clock Clock) QuoteService {
	return &quoteService{
		quoteRepo: quoteRepo,
		tx:        tx,
		clock:     clock,
	}
}

// AcceptQuote turns a quote into a booking. The accept, the refusal of
// every open sibling and the booking insert run in one transaction: either
// the request resolves completely or nothing changes.
//
// The conditional status update is the concurrency guard. Two actors
// accepting quotes on the same request race on that single UPDATE; the
// loser gets ErrConflict and no partial state ever becomes visible.
func (s *quoteService) AcceptQuote(ctx context.Context, requestID, quoteID, actorID int64) (*domain.Booking, error) {
	q, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.RequestID != requestID {
		return nil, fmt.Errorf("%w: quote %d does not belong to request %d", domain.ErrInvalidRequest, quoteID, requestID)
	}
	if actorID != q.ClientID {
		return nil, fmt.Errorf("%w: actor %d is not the requesting client", domain.ErrInvalidRequest, actorID)
	}
	if !q.Status.Open() {
		return nil, fmt.Errorf("%w: quote %d is %s", domain.ErrNotAcceptable, quoteID, q.Status)
	}
	// Expiry is evaluated on read, not by the sweep; a stored SENT status
	// past its window is already dead.
	if q.PastExpiry(s.clock.Now()) {
		return nil, fmt.Errorf("%w: quote %d expired at %s", domain.ErrExpired, quoteID, q.ExpiresAt)
	}

	var booking *domain.Booking
	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		if err := r.Quotes.Transition(ctx, quoteID, q.Status, domain.QuoteStatusAccepted); err != nil {
			return err
		}

		siblings, err := r.Quotes.ListByRequest(ctx, requestID)
		if err != nil {
			return fmt.Errorf("%w: list siblings: %v", domain.ErrTransientFailure, err)
		}
		for _, sib := range siblings {
			if sib.ID == quoteID || !sib.Status.Open() {
				continue
			}
			// A sibling failure rolls the acceptance back too; the
			// invariant is all-or-nothing, never a partial refusal.
			if err := r.Quotes.Transition(ctx, sib.ID, sib.Status, domain.QuoteStatusRefused); err != nil {
				return fmt.Errorf("%w: refuse sibling quote %d: %v", domain.ErrTransientFailure, sib.ID, err)
			}
		}

		booking = domain.NewBookingFromQuote(q)
		if err := r.Bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("%w: create booking: %v", domain.ErrTransientFailure, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrTransientFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: accept quote %d: %v", domain.ErrTransientFailure, quoteID, err)
	}

	logger.Info("Quote accepted", "request_id", requestID, "quote_id", quoteID, "booking_id", booking.ID, "amount_cents", booking.AmountCents)
	return booking, nil
}

// MarkViewed records that the client opened the quote. Advisory: losing a
// race here is not an error.
func (s *quoteService) MarkViewed(ctx context.Context, quoteID, actorID int64) error {
	q, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return err
	}
	if actorID != q.ClientID {
		return fmt.Errorf("%w: actor %d is not the requesting client", domain.ErrInvalidRequest, actorID)
	}
	if q.Status != domain.QuoteStatusSent {
		return nil
	}
	err = s.quoteRepo.Transition(ctx, quoteID, domain.QuoteStatusSent, domain.QuoteStatusViewed)
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}

func (s *quoteService) ListQuotes(ctx context.Context, requestID int64) ([]domain.Quote, error) {
	return s.quoteRepo.ListByRequest(ctx, requestID)
}
