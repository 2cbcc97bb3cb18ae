// Package pricingdoc holds the built-in validation rules for parsed pricing documents.
package pricingdoc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// Input is what every rule validates.
type Input struct {
	Document *domain.PricingDocument
	// DisplayedTotal is the document-level total shown by the sheet itself,
	// nil when the sheet has none.
	DisplayedTotal *float64
	// Precision is the display precision that sets the comparison epsilon.
	Precision int32
}

// ValidationResult is the outcome of one check of one rule.
type ValidationResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

func (in *Input) fmtd(d decimal.Decimal) string {
	return money.Format(d, in.Precision)
}

func (in *Input) approxEqual(a, b decimal.Decimal) bool {
	return money.WithinEpsilon(a, b, in.Precision)
}

// tableLabel names a table in messages: "table-1 (Main Display)".
func tableLabel(t *domain.PricingTable) string {
	if t.Name == "" {
		return t.ID
	}
	return fmt.Sprintf("%s (%s)", t.ID, t.Name)
}

// hasSubtotalRow is false only when the source shows no subtotal row was read.
func hasSubtotalRow(t *domain.PricingTable) bool {
	return t.Source == nil || t.Source.SubtotalRow >= 0
}

func hasGrandTotalRow(t *domain.PricingTable) bool {
	return t.Source == nil || t.Source.GrandTotalRow >= 0
}

// itemSum adds the prices of non-included items exactly.
func itemSum(t *domain.PricingTable) decimal.Decimal {
	prices := make([]float64, 0, len(t.Items))
	for i := range t.Items {
		if !t.Items[i].IsIncluded {
			prices = append(prices, t.Items[i].SellingPrice)
		}
	}
	return money.Sum(prices...)
}

// grandTotalSum adds the recorded grand totals of all tables exactly.
func grandTotalSum(d *domain.PricingDocument) decimal.Decimal {
	totals := make([]float64, len(d.Tables))
	for i := range d.Tables {
		totals[i] = d.Tables[i].GrandTotal
	}
	return money.Sum(totals...)
}
