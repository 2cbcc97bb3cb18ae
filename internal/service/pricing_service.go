package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ancpricing/internal/config"
	"ancpricing/internal/csvexport"
	"ancpricing/internal/domain"
	"ancpricing/internal/port"
	"ancpricing/internal/pricing"
	"ancpricing/internal/totals"
)

// ImportInput is the DTO for workbook import requests.
type ImportInput struct {
	FileName       string
	ContentType    string
	FileBytes      []byte
	PreferredSheet string
	// Mode defaults to the configured validation mode when empty.
	Mode domain.ValidationMode
}

// PricingService defines the pricing document contract.
type PricingService interface {
	Import(ctx context.Context, input ImportInput) (*domain.PricingRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ComputeTotals(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap) (*domain.DocumentTotals, error)
	Revalidate(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error)
	CheckExportable(ctx context.Context, id uuid.UUID) (*domain.ValidationReport, error)
	// ExportCSV writes rendered totals to w and returns the download filename.
	ExportCSV(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap, w io.Writer) (string, error)
	GetSourceURL(ctx context.Context, id uuid.UUID) (string, error)
}

type pricingService struct {
	repo     port.PricingRepository
	storage  port.ObjectStorage
	analyzer *Analyzer
	calc     totals.Calculator
	s3Cfg    *config.S3Config
	mode     domain.ValidationMode
	now      func() time.Time
}

// NewPricingService creates a new PricingService implementation.
func NewPricingService(
	repo port.PricingRepository,
	storage port.ObjectStorage,
	analyzer *Analyzer,
	s3Cfg *config.S3Config,
	pricingCfg *config.PricingConfig,
) PricingService {
	return &pricingService{
		repo:     repo,
		storage:  storage,
		analyzer: analyzer,
		calc:     totals.New(pricingCfg.DisplayPrecision),
		s3Cfg:    s3Cfg,
		mode:     pricingCfg.DefaultMode(),
		now:      time.Now,
	}
}

func (s *pricingService) Import(ctx context.Context, input ImportInput) (*domain.PricingRecord, error) {
	base := filepath.Base(input.FileName)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if int64(len(input.FileBytes)) > s.s3Cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	mode := input.Mode
	if mode == "" {
		mode = s.mode
	}

	analysis, err := s.analyzer.Analyze(ctx, input.FileBytes, input.PreferredSheet, mode)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	rec := &domain.PricingRecord{
		ID:             id,
		Name:           strings.TrimSuffix(base, filepath.Ext(base)),
		SourceFilename: base,
		SourceKey:      fmt.Sprintf("workbooks/%s/%s", id, base),
		SourceSize:     int64(len(input.FileBytes)),
	}
	if err := rec.SetResult(analysis.Document, analysis.Report); err != nil {
		return nil, fmt.Errorf("encoding pricing result: %w", err)
	}

	log.Printf("pricingService.Import: archiving %s (%d bytes) as %s, status=%s",
		base, rec.SourceSize, rec.SourceKey, rec.ValidationStatus)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Key:         rec.SourceKey,
		Body:        bytes.NewReader(input.FileBytes),
		ContentType: domain.AllowedFileTypes[fileType],
		Size:        rec.SourceSize,
	})
	if err != nil {
		log.Printf("pricingService.Import: upload failed for %s: %v", rec.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if delErr := s.storage.Delete(ctx, rec.SourceKey); delErr != nil {
			log.Printf("pricingService.Import: failed to remove orphaned source %s: %v", rec.SourceKey, delErr)
		}
		return nil, fmt.Errorf("creating pricing record: %w", err)
	}
	return rec, nil
}

func (s *pricingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *pricingService) List(ctx context.Context, offset, limit int) ([]domain.PricingRecord, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *pricingService) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, rec.SourceKey); err != nil {
		log.Printf("pricingService.Delete: failed to remove source %s: %v", rec.SourceKey, err)
	}
	return nil
}

func (s *pricingService) ComputeTotals(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap) (*domain.DocumentTotals, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := rec.Document()
	if err != nil {
		return nil, fmt.Errorf("decoding pricing document %s: %w", id, err)
	}
	dt := s.calc.DocumentTotals(doc, overrides)
	return &dt, nil
}

func (s *pricingService) Revalidate(ctx context.Context, id uuid.UUID) (*domain.PricingRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, rec.SourceKey)
	if err != nil {
		return nil, fmt.Errorf("downloading source %s: %w", rec.SourceKey, err)
	}

	previous := rec.ParserVersion
	analysis, err := s.analyzer.Analyze(ctx, data, rec.SheetName, domain.ValidationModeAdvisory)
	if err != nil {
		return nil, err
	}
	if err := rec.SetResult(analysis.Document, analysis.Report); err != nil {
		return nil, fmt.Errorf("encoding pricing result: %w", err)
	}
	if err := s.repo.UpdateResult(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("pricingService.Revalidate: document %s revalidated (%s -> %s), status=%s",
		rec.ID, previous, rec.ParserVersion, rec.ValidationStatus)
	return rec, nil
}

func (s *pricingService) CheckExportable(ctx context.Context, id uuid.UUID) (*domain.ValidationReport, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return exportable(rec)
}

// exportable re-surfaces the stored report of rec. A report from another
// parser version is stale even when it passed.
func exportable(rec *domain.PricingRecord) (*domain.ValidationReport, error) {
	report, err := rec.Report()
	if err != nil {
		return nil, fmt.Errorf("decoding validation report %s: %w", rec.ID, err)
	}
	if report.ParserVersion != pricing.ParserVersion {
		return report, fmt.Errorf("%w: report %s, current %s", domain.ErrValidationStale, report.ParserVersion, pricing.ParserVersion)
	}
	if !report.Passed() {
		return report, &domain.ValidationFailedError{Report: report}
	}
	return report, nil
}

func (s *pricingService) ExportCSV(ctx context.Context, id uuid.UUID, overrides domain.PriceOverrideMap, w io.Writer) (string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := exportable(rec); err != nil {
		return "", err
	}
	doc, err := rec.Document()
	if err != nil {
		return "", fmt.Errorf("decoding pricing document %s: %w", id, err)
	}
	dt := s.calc.DocumentTotals(doc, overrides)

	if err := csvexport.Export(w, doc, &dt); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return csvexport.BuildFilename(rec.Name, s.now()), nil
}

func (s *pricingService) GetSourceURL(ctx context.Context, id uuid.UUID) (string, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, rec.SourceKey, s.s3Cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning source %s: %w", rec.SourceKey, err)
	}
	return url, nil
}
