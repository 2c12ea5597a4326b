package service_test

import (
	"context"
	"time"

	"servibook-backend/internal/domain"
	"servibook-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

func (m *MockRequestRepository) Close(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.Quote, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Transition(ctx context.Context, id int64, from, to domain.QuoteStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockQuoteRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByQuoteID(ctx context.Context, quoteID int64) (*domain.Booking, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Transition(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockBookingRepository) SetCancellation(ctx context.Context, id int64, reason string, cancelledBy int64) error {
	args := m.Called(ctx, id, reason, cancelledBy)
	return args.Error(0)
}

func (m *MockBookingRepository) SetPaymentRef(ctx context.Context, id int64, paymentRef string) error {
	args := m.Called(ctx, id, paymentRef)
	return args.Error(0)
}

func (m *MockBookingRepository) ListByClient(ctx context.Context, clientID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, clientID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

func (m *MockBookingRepository) ListByProvider(ctx context.Context, providerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, providerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) Create(ctx context.Context, r *domain.RefundRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRefundRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.RefundRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRecord), args.Error(1)
}

func (m *MockRefundRepository) GetByReference(ctx context.Context, reference string) (*domain.RefundRecord, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRecord), args.Error(1)
}

func (m *MockRefundRepository) ListByProcessingStatus(ctx context.Context, status domain.RefundProcessingStatus, limit int32) ([]domain.RefundRecord, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefundRecord), args.Error(1)
}

func (m *MockRefundRepository) TransitionProcessing(ctx context.Context, id int64, from, to domain.RefundProcessingStatus, processorRef, failureReason string) error {
	args := m.Called(ctx, id, from, to, processorRef, failureReason)
	return args.Error(0)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) SubmitRefund(ctx context.Context, rec *domain.RefundRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

// stubTxRunner runs the callback against the given repositories without a
// real transaction. Good enough for service tests: the repository layer
// owns the actual transactional behavior.
type stubTxRunner struct {
	repos repository.Repositories
}

func (s *stubTxRunner) InTx(_ context.Context, fn func(r *repository.Repositories) error) error {
	return fn(&s.repos)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
