// Package pricing turns a spreadsheet grid into a structured pricing document:
// header location, row classification and table segmentation.
package pricing

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// ParserVersion tags every validation report. Bump it whenever a change to
// classification, segmentation or validation could alter the output for a
// previously parsed sheet.
const ParserVersion = "strict-v1"

// ParseOptions tunes a parse. The zero value uses the defaults.
type ParseOptions struct {
	// ScanRows is how many leading rows are searched for the header.
	ScanRows int
	// DefaultCurrency is assigned when the sheet names none.
	DefaultCurrency string
	// PreferredSheet is tried before any other candidate when set.
	PreferredSheet string
}

func (o ParseOptions) scanRows() int {
	if o.ScanRows <= 0 {
		return DefaultScanRows
	}
	return o.ScanRows
}

// sheetKeywords rank sheet names that usually hold the pricing table.
var sheetKeywords = []string{"margin analysis", "cost analysis", "pricing", "budget", "bid form", "proposal"}

// ClassifyRows classifies every row below the header.
func ClassifyRows(grid *domain.SheetGrid, h *Header) []domain.ClassifiedRow {
	rows := make([]domain.ClassifiedRow, 0, grid.RowCount()-h.Row)
	for r := h.Row + 1; r < grid.RowCount(); r++ {
		rows = append(rows, ClassifyRow(grid, h, r))
	}
	return rows
}

func segmentSheet(grid *domain.SheetGrid, opts ParseOptions) (*Header, *Segmentation, error) {
	h, err := LocateHeader(grid, opts.scanRows())
	if err != nil {
		return nil, nil, err
	}
	currency := h.Currency
	if currency == "" {
		currency = opts.DefaultCurrency
	}
	return h, Segment(ClassifyRows(grid, h), currency), nil
}

// ParseSheet parses a single sheet. It fails only when no header row is found;
// a sheet with a header but no tables yields an empty document.
func ParseSheet(grid *domain.SheetGrid, opts ParseOptions) (*domain.PricingDocument, error) {
	h, seg, err := segmentSheet(grid, opts)
	if err != nil {
		return nil, err
	}

	grandTotals := make([]float64, len(seg.Tables))
	for i := range seg.Tables {
		grandTotals[i] = seg.Tables[i].GrandTotal
	}

	doc := &domain.PricingDocument{
		Tables:         seg.Tables,
		DocumentTotal:  money.Float(money.Sum(grandTotals...)),
		DisplayedTotal: seg.DocumentTotal,
		SourceSheet:    grid.Name,
	}
	switch {
	case len(seg.Tables) > 0:
		doc.Currency = seg.Tables[0].Currency
	case h.Currency != "":
		doc.Currency = h.Currency
	default:
		doc.Currency = opts.DefaultCurrency
	}
	return doc, nil
}

// CandidateSheets orders sheets for parsing: the preferred sheet, then names
// matching a pricing keyword, then the rest, each group in workbook order.
func CandidateSheets(sheets []domain.SheetGrid, preferred string) []*domain.SheetGrid {
	rank := func(g *domain.SheetGrid) int {
		name := Normalize(g.Name)
		if preferred != "" && name == Normalize(preferred) {
			return 0
		}
		for _, kw := range sheetKeywords {
			if strings.Contains(name, kw) {
				return 1
			}
		}
		return 2
	}

	out := make([]*domain.SheetGrid, len(sheets))
	for i := range sheets {
		out[i] = &sheets[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

// ParseWorkbook tries each candidate sheet in order and returns the first
// parse that finds a header, together with the grid it came from.
func ParseWorkbook(sheets []domain.SheetGrid, opts ParseOptions) (*domain.PricingDocument, *domain.SheetGrid, error) {
	var lastErr error
	for _, grid := range CandidateSheets(sheets, opts.PreferredSheet) {
		doc, err := ParseSheet(grid, opts)
		if err == nil {
			return doc, grid, nil
		}
		var hnf *domain.HeaderNotFoundError
		if !errors.As(err, &hnf) {
			return nil, nil, err
		}
		log.Printf("pricing.ParseWorkbook: sheet %q rejected: %v", grid.Name, err)
		lastErr = err
	}
	if lastErr == nil {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrNoPricingSheet)
	}
	return nil, nil, fmt.Errorf("%w: %w", domain.ErrNoPricingSheet, lastErr)
}
