package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ancpricing/internal/domain"
)

// MockPricingRepo is a mock implementation of port.PricingRepository.
type MockPricingRepo struct {
	mock.Mock
}

func (m *MockPricingRepo) Create(ctx context.Context, rec *domain.PricingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPricingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRecord), args.Error(1)
}

func (m *MockPricingRepo) List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PricingRecord), args.Int(1), args.Error(2)
}

func (m *MockPricingRepo) UpdateResult(ctx context.Context, rec *domain.PricingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPricingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPricingRepo) ClaimStale(ctx context.Context, parserVersion string, limit int) ([]domain.PricingRecord, error) {
	args := m.Called(ctx, parserVersion, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricingRecord), args.Error(1)
}
