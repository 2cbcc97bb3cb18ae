package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ancpricing/internal/domain"
	"ancpricing/internal/port"
)

// claimLease is how long a ClaimStale claim blocks other workers.
const claimLease = 10 * time.Minute

type pricingDocumentRepo struct {
	db *sqlx.DB
}

// NewPricingDocumentRepo creates a new PostgreSQL-backed PricingRepository.
func NewPricingDocumentRepo(db *sqlx.DB) port.PricingRepository {
	return &pricingDocumentRepo{db: db}
}

func (r *pricingDocumentRepo) Create(ctx context.Context, rec *domain.PricingRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO pricing_documents (
		id, name, source_filename, source_key, source_size,
		sheet_name, currency, document_total, table_count,
		validation_status, parser_version, document_data, validation_report,
		created_at, updated_at
	) VALUES (
		:id, :name, :source_filename, :source_key, :source_size,
		:sheet_name, :currency, :document_total, :table_count,
		:validation_status, :parser_version, :document_data, :validation_report,
		:created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("pricingDocumentRepo.Create: %w", err)
	}
	return nil
}

func (r *pricingDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	var rec domain.PricingRecord
	err := r.db.GetContext(ctx, &rec, "SELECT * FROM pricing_documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("pricingDocumentRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *pricingDocumentRepo) List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM pricing_documents"); err != nil {
		return nil, 0, fmt.Errorf("pricingDocumentRepo.List count: %w", err)
	}

	recs := []domain.PricingRecord{}
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM pricing_documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pricingDocumentRepo.List: %w", err)
	}
	return recs, total, nil
}

func (r *pricingDocumentRepo) UpdateResult(ctx context.Context, rec *domain.PricingRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	rec.ClaimedAt = nil
	result, err := r.db.NamedExecContext(ctx,
		`UPDATE pricing_documents SET
			sheet_name = :sheet_name, currency = :currency,
			document_total = :document_total, table_count = :table_count,
			validation_status = :validation_status, parser_version = :parser_version,
			document_data = :document_data, validation_report = :validation_report,
			claimed_at = NULL, updated_at = :updated_at
		 WHERE id = :id`, rec)
	if err != nil {
		return fmt.Errorf("pricingDocumentRepo.UpdateResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *pricingDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM pricing_documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("pricingDocumentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *pricingDocumentRepo) ClaimStale(ctx context.Context, parserVersion string, limit int) ([]domain.PricingRecord, error) {
	now := time.Now().UTC()
	recs := []domain.PricingRecord{}
	err := r.db.SelectContext(ctx, &recs,
		`UPDATE pricing_documents SET claimed_at = $1
		 WHERE id IN (
			SELECT id FROM pricing_documents
			WHERE parser_version <> $2
			  AND (claimed_at IS NULL OR claimed_at < $3)
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		now, parserVersion, now.Add(-claimLease), limit)
	if err != nil {
		return nil, fmt.Errorf("pricingDocumentRepo.ClaimStale: %w", err)
	}
	return recs, nil
}
