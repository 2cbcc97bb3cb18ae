package service

import (
	"context"
	"fmt"
	"log"

	"ancpricing/internal/domain"
	"ancpricing/internal/pricing"
	"ancpricing/internal/validator"
	"ancpricing/internal/workbook"
)

// Analysis is the outcome of running a workbook through the parser and the
// validation engine.
type Analysis struct {
	Document *domain.PricingDocument
	Grid     *domain.SheetGrid
	Report   *domain.ValidationReport
}

// Analyzer parses workbook bytes and validates the result. It is shared by
// the HTTP service and the pricingcheck CLI.
type Analyzer struct {
	opts   pricing.ParseOptions
	engine *validator.Engine
}

// NewAnalyzer creates an Analyzer. opts must be the options engine was built with.
func NewAnalyzer(opts pricing.ParseOptions, engine *validator.Engine) *Analyzer {
	return &Analyzer{opts: opts, engine: engine}
}

// Analyze reads data as a workbook, parses its pricing sheet and validates it.
// preferredSheet, when non-empty, is tried first. In strict mode a FAIL report
// is returned together with a *domain.ValidationFailedError.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, preferredSheet string, mode domain.ValidationMode) (*Analysis, error) {
	sheets, err := workbook.ReadBytes(data)
	if err != nil {
		return nil, err
	}

	opts := a.opts
	opts.PreferredSheet = preferredSheet
	doc, grid, err := pricing.ParseWorkbook(sheets, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	report, err := a.engine.Check(ctx, doc, mode)
	result := &Analysis{Document: doc, Grid: grid, Report: report}
	if err != nil {
		log.Printf("service.Analyzer: sheet %q rejected in %s mode: %v", grid.Name, mode, err)
		return result, err
	}
	return result, nil
}
