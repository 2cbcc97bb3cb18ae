package port

import (
	"context"

	"github.com/google/uuid"

	"ancpricing/internal/domain"
)

// PricingRepository defines the contract for pricing record persistence.
type PricingRepository interface {
	Create(ctx context.Context, rec *domain.PricingRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error)
	// UpdateResult replaces the stored document and report, and releases any claim.
	UpdateResult(ctx context.Context, rec *domain.PricingRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClaimStale stamps claimed_at on up to limit records whose parser_version
	// differs from parserVersion and returns them, oldest first. A claim
	// expires after ten minutes so a crashed worker does not strand records.
	ClaimStale(ctx context.Context, parserVersion string, limit int) ([]domain.PricingRecord, error)
}
