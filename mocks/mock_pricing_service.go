package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ancpricing/internal/domain"
	"ancpricing/internal/service"
)

// MockPricingService is a mock implementation of service.PricingService.
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Import(ctx context.Context, input service.ImportInput) (*domain.PricingRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRecord), args.Error(1)
}

func (m *MockPricingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRecord), args.Error(1)
}

func (m *MockPricingService) List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PricingRecord), args.Int(1), args.Error(2)
}

func (m *MockPricingService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPricingService) ComputeTotals(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap) (*domain.DocumentTotals, error) {
	args := m.Called(ctx, id, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentTotals), args.Error(1)
}

func (m *MockPricingService) Revalidate(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRecord), args.Error(1)
}

func (m *MockPricingService) CheckExportable(ctx context.Context, id uuid.UUID) (*domain.ValidationReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationReport), args.Error(1)
}

// ExportCSV writes the mocked body (args[0], a string) to w.
func (m *MockPricingService) ExportCSV(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap, w io.Writer) (string, error) {
	args := m.Called(ctx, id, overrides, w)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.String(1), args.Error(2)
}

func (m *MockPricingService) GetSourceURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
