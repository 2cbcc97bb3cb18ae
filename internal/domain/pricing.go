package domain

import "math"

// CellKind identifies the type of a normalized spreadsheet cell.
type CellKind int

const (
	CellBlank CellKind = iota
	CellNumber
	CellText
)

// Cell is a normalized spreadsheet cell value. Values are whatever the source
// grid reports as computed; formulas are never carried.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// BlankCell returns an empty cell.
func BlankCell() Cell { return Cell{Kind: CellBlank} }

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// IsBlank reports whether the cell carries no content.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellNumber:
		return math.IsNaN(c.Number)
	case CellText:
		return c.Text == ""
	default:
		return true
	}
}

// SheetGrid is a named sheet as rows of cells. It is owned by the caller and
// must not be modified while a parse borrows it.
type SheetGrid struct {
	Name string
	Rows [][]Cell
}

// RowCount returns the number of rows in the grid.
func (g *SheetGrid) RowCount() int { return len(g.Rows) }

// Cell returns the cell at (row, col), or a blank cell when out of range.
func (g *SheetGrid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return BlankCell()
	}
	return g.Rows[row][col]
}

// ColumnCount returns the width of the given row.
func (g *SheetGrid) ColumnCount(row int) int {
	if row < 0 || row >= len(g.Rows) {
		return 0
	}
	return len(g.Rows[row])
}

// RowKind is the classification assigned to a row below the header.
type RowKind int

const (
	RowEmpty RowKind = iota
	RowSectionHeader
	RowLineItem
	RowSubtotal
	RowTax
	RowBond
	RowGrandTotal
)

var rowKindNames = map[RowKind]string{
	RowEmpty:         "EMPTY",
	RowSectionHeader: "SECTION_HEADER",
	RowLineItem:      "LINE_ITEM",
	RowSubtotal:      "SUBTOTAL",
	RowTax:           "TAX",
	RowBond:          "BOND",
	RowGrandTotal:    "GRAND_TOTAL",
}

func (k RowKind) String() string {
	if s, ok := rowKindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ClassifiedRow is a transient, per-row classification result. Cost and
// SellingPrice are NaN when the cell has no numeric content.
type ClassifiedRow struct {
	RowIndex     int
	Label        string
	Cost         float64
	SellingPrice float64
	Kind         RowKind

	// Normalized is the lowercased, whitespace-collapsed label used by the rules.
	Normalized string
	// Rate is a percentage found on a TAX or BOND row, as a fraction.
	Rate *float64
	// Included is set when the selling price cell carries an inclusion marker.
	Included bool
	// Currency is the ISO code detected from the row's cells, if any.
	Currency string
}

// PricingLineItem is a single priced row within a table.
type PricingLineItem struct {
	Description  string  `json:"description"`
	SellingPrice float64 `json:"sellingPrice"`
	IsIncluded   bool    `json:"isIncluded"`
}

// PricingAlternate is an add/deduct line tracked alongside a table but never
// summed into its grand total.
type PricingAlternate struct {
	Description string  `json:"description"`
	PriceDelta  float64 `json:"priceDelta"`
}

// TaxLine is the recorded tax of a table. Rate is a fraction when the sheet states one.
type TaxLine struct {
	Amount float64  `json:"amount"`
	Rate   *float64 `json:"rate,omitempty"`
}

// TableSource records where a table came from in the grid. Row indexes are
// 0-based; -1 means the row was not present.
type TableSource struct {
	HeaderRow     int `json:"headerRow"`
	FirstRow      int `json:"firstRow"`
	LastRow       int `json:"lastRow"`
	SubtotalRow   int `json:"subtotalRow"`
	GrandTotalRow int `json:"grandTotalRow"`
}

// PricingTable is one segmented pricing section. Subtotal, Tax, Bond and
// GrandTotal are the source-of-record values read from the spreadsheet.
type PricingTable struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Currency   string             `json:"currency"`
	Items      []PricingLineItem  `json:"items"`
	Alternates []PricingAlternate `json:"alternates"`
	Subtotal   float64            `json:"subtotal"`
	Tax        *TaxLine           `json:"tax"`
	Bond       float64            `json:"bond"`
	BondRate   *float64           `json:"bondRate,omitempty"`
	GrandTotal float64            `json:"grandTotal"`
	Source     *TableSource       `json:"source,omitempty"`
}

// TaxAmount returns the recorded tax, or zero when the table has no tax row.
func (t *PricingTable) TaxAmount() float64 {
	if t.Tax == nil {
		return 0
	}
	return t.Tax.Amount
}

// PricingDocument is the structured result of parsing one sheet.
// DocumentTotal is the sum of table grand totals at parse time; it is not kept
// in sync with overrides. DisplayedTotal is the document-level total the sheet
// itself shows, nil when it shows none.
type PricingDocument struct {
	Tables         []PricingTable `json:"tables"`
	DocumentTotal  float64        `json:"documentTotal"`
	DisplayedTotal *float64       `json:"displayedTotal,omitempty"`
	Currency       string         `json:"currency"`
	SourceSheet    string         `json:"sourceSheet"`
}

// Currencies returns the distinct table currencies in table order.
func (d *PricingDocument) Currencies() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range d.Tables {
		c := d.Tables[i].Currency
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// OverrideKey addresses one line item of one table.
type OverrideKey struct {
	TableID   string
	ItemIndex int
}

// PriceOverrideMap holds interactive price edits. It never mutates a table;
// it only parameterizes a totals computation.
type PriceOverrideMap map[OverrideKey]float64

// RenderedItem is a line item with its price passed through the rounding policy.
type RenderedItem = PricingLineItem

// TableTotals is the derived totals of one table.
type TableTotals struct {
	TableID    string         `json:"tableId"`
	Items      []RenderedItem `json:"items"`
	Subtotal   float64        `json:"subtotal"`
	Tax        float64        `json:"tax"`
	Bond       float64        `json:"bond"`
	GrandTotal float64        `json:"grandTotal"`
}

// DocumentTotals is the derived totals of a whole document.
type DocumentTotals struct {
	Tables        []TableTotals `json:"tables"`
	DocumentTotal float64       `json:"documentTotal"`
	Currency      string        `json:"currency"`
	Precision     int32         `json:"precision"`
}
