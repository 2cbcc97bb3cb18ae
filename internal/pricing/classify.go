package pricing

import (
	"math"
	"strings"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// keywordSet matches a normalized label by equality, prefix, or substring.
type keywordSet struct {
	Equals   []string
	Prefixes []string
	Contains []string
}

// Match reports whether label hits any entry of the set.
func (k keywordSet) Match(label string) bool {
	if label == "" {
		return false
	}
	for _, s := range k.Equals {
		if label == s {
			return true
		}
	}
	for _, s := range k.Prefixes {
		if strings.HasPrefix(label, s) {
			return true
		}
	}
	for _, s := range k.Contains {
		if strings.Contains(label, s) {
			return true
		}
	}
	return false
}

var (
	grandTotalKeywords = keywordSet{
		Equals:   []string{"total", "project total"},
		Contains: []string{"grand total", "sub total (bid form)"},
	}
	taxKeywords      = keywordSet{Equals: []string{"tax"}, Prefixes: []string{"tax "}}
	bondKeywords     = keywordSet{Equals: []string{"bond"}}
	subtotalKeywords = keywordSet{Contains: []string{"subtotal", "sub total"}}
	sectionKeywords  = keywordSet{Contains: []string{"display", "video board", "ribbon", "concourse", "hall of", "section"}}
	alternateKeyword = keywordSet{Contains: []string{"alternate"}}
	includedMarkers  = keywordSet{Equals: []string{"included", "incl", "incl.", "n/c", "no charge", "included in base"}}
)

// RowFacts are the observations about one row that the rules decide on.
type RowFacts struct {
	Label    string // normalized
	Cost     float64
	Sell     float64
	Included bool
}

func (f *RowFacts) hasLabel() bool { return f.Label != "" }
func (f *RowFacts) hasCost() bool  { return money.IsFinite(f.Cost) }
func (f *RowFacts) hasSell() bool  { return money.IsFinite(f.Sell) }
func (f *RowFacts) anyNumber() bool {
	return f.hasCost() || f.hasSell()
}

// Rule is one classification rule. Rules are evaluated in order; the first match wins.
type Rule struct {
	Name  string
	Kind  domain.RowKind
	Match func(f *RowFacts) bool
}

var classificationRules = []Rule{
	{
		Name: "empty",
		Kind: domain.RowEmpty,
		Match: func(f *RowFacts) bool {
			return !f.hasLabel() && !f.anyNumber()
		},
	},
	{
		Name:  "grand_total",
		Kind:  domain.RowGrandTotal,
		Match: func(f *RowFacts) bool { return grandTotalKeywords.Match(f.Label) },
	},
	{
		Name:  "tax",
		Kind:  domain.RowTax,
		Match: func(f *RowFacts) bool { return taxKeywords.Match(f.Label) },
	},
	{
		Name:  "bond",
		Kind:  domain.RowBond,
		Match: func(f *RowFacts) bool { return bondKeywords.Match(f.Label) },
	},
	{
		// An unlabeled numeric row right after line items is a subtotal.
		Name: "subtotal",
		Kind: domain.RowSubtotal,
		Match: func(f *RowFacts) bool {
			return subtotalKeywords.Match(f.Label) || (!f.hasLabel() && f.anyNumber())
		},
	},
	{
		Name: "section_header",
		Kind: domain.RowSectionHeader,
		Match: func(f *RowFacts) bool {
			if !f.hasLabel() || alternateKeyword.Match(f.Label) || f.Included {
				return false
			}
			if !f.anyNumber() {
				return true
			}
			return money.IsZeroOrAbsent(f.Cost) && money.IsZeroOrAbsent(f.Sell) && sectionKeywords.Match(f.Label)
		},
	},
	{
		Name:  "line_item",
		Kind:  domain.RowLineItem,
		Match: func(*RowFacts) bool { return true },
	},
}

// Rules returns the classification rules in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(classificationRules))
	copy(out, classificationRules)
	return out
}

// ClassifyFacts applies the rules to a row's facts.
func ClassifyFacts(f *RowFacts) domain.RowKind {
	for i := range classificationRules {
		if classificationRules[i].Match(f) {
			return classificationRules[i].Kind
		}
	}
	return domain.RowLineItem
}

// NumericValue returns the numeric content of a cell, or NaN when it has none.
func NumericValue(c domain.Cell) float64 {
	switch c.Kind {
	case domain.CellNumber:
		if !money.IsFinite(c.Number) {
			return math.NaN()
		}
		return c.Number
	case domain.CellText:
		return money.ParseAmount(c.Text)
	default:
		return math.NaN()
	}
}

// ClassifyRow classifies one row of grid below the header.
func ClassifyRow(grid *domain.SheetGrid, h *Header, row int) domain.ClassifiedRow {
	label := cellText(grid.Cell(row, h.LabelCol))
	costCell := grid.Cell(row, h.CostCol)
	sellCell := grid.Cell(row, h.SellCol)

	facts := RowFacts{
		Label: Normalize(label),
		Cost:  NumericValue(costCell),
		Sell:  NumericValue(sellCell),
	}
	if sellCell.Kind == domain.CellText && !facts.hasSell() {
		facts.Included = includedMarkers.Match(Normalize(sellCell.Text))
	}

	cr := domain.ClassifiedRow{
		RowIndex:     row,
		Label:        label,
		Normalized:   facts.Label,
		Cost:         facts.Cost,
		SellingPrice: facts.Sell,
		Included:     facts.Included,
		Kind:         ClassifyFacts(&facts),
	}

	for _, c := range []domain.Cell{sellCell, costCell} {
		if c.Kind == domain.CellText {
			if code := money.DetectCurrency(c.Text); code != "" {
				cr.Currency = code
				break
			}
		}
	}

	if cr.Kind == domain.RowTax || cr.Kind == domain.RowBond {
		cr.Rate = rowRate(grid, row, label)
	}
	return cr
}

// rowRate looks for a stated percentage in the label, then in any text cell of the row.
func rowRate(grid *domain.SheetGrid, row int, label string) *float64 {
	if r, ok := money.ExtractRate(label); ok {
		return &r
	}
	for c := 0; c < grid.ColumnCount(row); c++ {
		cell := grid.Cell(row, c)
		if cell.Kind != domain.CellText {
			continue
		}
		if r, ok := money.ExtractRate(cell.Text); ok {
			return &r
		}
	}
	return nil
}
