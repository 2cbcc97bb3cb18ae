// Package totals recomputes money totals from a parsed pricing document.
//
// Every item price is rounded to display precision before it is summed
// (round-then-sum). Three items at 100.49 total 300 at zero decimals, not
// round(301.47) = 301. This reproduces spreadsheets that round at the row
// level and must not be changed to sum-then-round.
//
// All functions are pure: inputs are never mutated and identical inputs give
// identical outputs.
package totals

import (
	"log"

	"github.com/shopspring/decimal"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// Calculator computes totals at a fixed display precision.
type Calculator struct {
	Precision int32
}

// Default computes at money.DefaultPrecision.
var Default = Calculator{Precision: money.DefaultPrecision}

// New returns a calculator for precision decimal places. A negative precision
// falls back to the default.
func New(precision int32) Calculator {
	if precision < 0 {
		precision = money.DefaultPrecision
	}
	return Calculator{Precision: precision}
}

// tableParts is the decimal breakdown of one table.
type tableParts struct {
	items    []domain.RenderedItem
	subtotal decimal.Decimal
	tax      decimal.Decimal
	bond     decimal.Decimal
}

func (p tableParts) grandTotal() decimal.Decimal {
	return p.subtotal.Add(p.tax).Add(p.bond)
}

func (c Calculator) round(v float64) decimal.Decimal {
	return money.Round(v, c.Precision)
}

// rate applies a fractional rate to an already rounded base.
func (c Calculator) rate(base decimal.Decimal, rate float64) decimal.Decimal {
	return base.Mul(money.Dec(rate)).Round(c.Precision)
}

func (c Calculator) parts(t *domain.PricingTable, overrides domain.PriceOverrideMap) tableParts {
	p := tableParts{items: make([]domain.RenderedItem, len(t.Items))}

	for i := range t.Items {
		item := t.Items[i]
		if item.IsIncluded {
			p.items[i] = domain.RenderedItem{Description: item.Description, IsIncluded: true}
			continue
		}
		price := item.SellingPrice
		if v, ok := overrides[domain.OverrideKey{TableID: t.ID, ItemIndex: i}]; ok {
			price = v
		}
		rounded := c.round(price)
		if rounded.IsZero() {
			// A price that rounds to nothing renders as included.
			p.items[i] = domain.RenderedItem{Description: item.Description, IsIncluded: true}
			continue
		}
		p.items[i] = domain.RenderedItem{Description: item.Description, SellingPrice: money.Float(rounded)}
		p.subtotal = p.subtotal.Add(rounded)
	}

	if t.Tax != nil {
		if t.Tax.Rate != nil {
			p.tax = c.rate(p.subtotal, *t.Tax.Rate)
		} else {
			p.tax = c.round(t.Tax.Amount)
		}
	}
	if t.BondRate != nil {
		p.bond = c.rate(p.subtotal, *t.BondRate)
	} else {
		p.bond = c.round(t.Bond)
	}
	return p
}

// TableTotals computes the totals of one table. overrides may be nil. Keys
// for other tables are ignored, as are keys past the end of the item list.
func (c Calculator) TableTotals(t *domain.PricingTable, overrides domain.PriceOverrideMap) domain.TableTotals {
	logOutOfRange(t, overrides)
	p := c.parts(t, overrides)
	return domain.TableTotals{
		TableID:    t.ID,
		Items:      p.items,
		Subtotal:   money.Float(p.subtotal),
		Tax:        money.Float(p.tax),
		Bond:       money.Float(p.bond),
		GrandTotal: money.Float(p.grandTotal()),
	}
}

// DocumentTotal sums TableTotals(t).GrandTotal over every table of doc.
func (c Calculator) DocumentTotal(doc *domain.PricingDocument) float64 {
	total := decimal.Zero
	for i := range doc.Tables {
		tt := c.TableTotals(&doc.Tables[i], nil)
		total = total.Add(money.Dec(tt.GrandTotal))
	}
	return money.Float(total)
}

// DocumentTotalFromTables aggregates subtotals, taxes and bonds across tables
// and adds them once at the end. It must always agree with DocumentTotal.
func (c Calculator) DocumentTotalFromTables(tables []domain.PricingTable) float64 {
	var subtotal, tax, bond decimal.Decimal
	for i := range tables {
		p := c.parts(&tables[i], nil)
		subtotal = subtotal.Add(p.subtotal)
		tax = tax.Add(p.tax)
		bond = bond.Add(p.bond)
	}
	return money.Float(subtotal.Add(tax).Add(bond))
}

// DocumentTotals computes every table with overrides applied, plus the
// document total over those tables.
func (c Calculator) DocumentTotals(doc *domain.PricingDocument, overrides domain.PriceOverrideMap) domain.DocumentTotals {
	out := domain.DocumentTotals{
		Tables:    make([]domain.TableTotals, len(doc.Tables)),
		Currency:  doc.Currency,
		Precision: c.Precision,
	}
	total := decimal.Zero
	for i := range doc.Tables {
		out.Tables[i] = c.TableTotals(&doc.Tables[i], overrides)
		total = total.Add(money.Dec(out.Tables[i].GrandTotal))
	}
	out.DocumentTotal = money.Float(total)
	return out
}

// TableTotals computes the totals of one table at the default precision.
func TableTotals(t *domain.PricingTable, overrides domain.PriceOverrideMap) domain.TableTotals {
	return Default.TableTotals(t, overrides)
}

// DocumentTotal sums the table grand totals of doc at the default precision.
func DocumentTotal(doc *domain.PricingDocument) float64 {
	return Default.DocumentTotal(doc)
}

// DocumentTotalFromTables aggregates tables at the default precision.
func DocumentTotalFromTables(tables []domain.PricingTable) float64 {
	return Default.DocumentTotalFromTables(tables)
}

func logOutOfRange(t *domain.PricingTable, overrides domain.PriceOverrideMap) {
	for k := range overrides {
		if k.TableID == t.ID && (k.ItemIndex < 0 || k.ItemIndex >= len(t.Items)) {
			log.Printf("totals.TableTotals: override %s out of range (%d items), ignored", FormatOverrideKey(k), len(t.Items))
		}
	}
}
