package pricing

import (
	"fmt"
	"log"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// Segmentation is the output of the segmenter.
type Segmentation struct {
	Tables []domain.PricingTable
	// DocumentTotal is the grand total the sheet itself displays at document
	// level (a rollup row after the last table), or nil when absent. A rollup
	// followed by further tables is an intermediate total and is not kept.
	DocumentTotal    *float64
	DocumentTotalRow int
}

// segmenterState is either noOpenTable or accumulating.
type segmenterState interface{ segmenterState() }

type noOpenTable struct {
	// afterGrandTotal is set once a table has been closed by a grand total
	// and no row has opened another one since.
	afterGrandTotal bool
}

type accumulating struct {
	partial *partialTable
}

func (noOpenTable) segmenterState()  {}
func (accumulating) segmenterState() {}

type partialTable struct {
	table    domain.PricingTable
	source   domain.TableSource
	started  bool
	currency string
	// afterGrandTotal carries the idle state the table was opened from.
	afterGrandTotal bool
}

func newPartial(name string, headerRow int) *partialTable {
	return &partialTable{
		table: domain.PricingTable{
			Name:       name,
			Items:      []domain.PricingLineItem{},
			Alternates: []domain.PricingAlternate{},
		},
		source: domain.TableSource{
			HeaderRow:     headerRow,
			FirstRow:      -1,
			LastRow:       -1,
			SubtotalRow:   -1,
			GrandTotalRow: -1,
		},
	}
}

// touch records that row belongs to the table.
func (p *partialTable) touch(row domain.ClassifiedRow) {
	if !p.started {
		p.source.FirstRow = row.RowIndex
		p.started = true
	}
	p.source.LastRow = row.RowIndex
	if p.currency == "" && row.Currency != "" {
		p.currency = row.Currency
	}
}

func (p *partialTable) empty() bool {
	return len(p.table.Items) == 0 &&
		len(p.table.Alternates) == 0 &&
		p.source.SubtotalRow < 0 &&
		p.source.GrandTotalRow < 0 &&
		p.table.Tax == nil &&
		p.table.Bond == 0
}

// segmenter walks classified rows and emits tables.
type segmenter struct {
	state           segmenterState
	defaultCurrency string
	tables          []domain.PricingTable
	rollup          *float64
	rollupRow       int
}

// Segment groups classified rows into pricing tables. defaultCurrency is
// assigned to tables whose rows name no currency.
func Segment(rows []domain.ClassifiedRow, defaultCurrency string) *Segmentation {
	s := &segmenter{
		state:           noOpenTable{},
		defaultCurrency: defaultCurrency,
		rollupRow:       -1,
	}
	for _, row := range rows {
		s.state = s.step(row)
	}
	if acc, ok := s.state.(accumulating); ok {
		if !acc.partial.empty() {
			log.Printf("pricing.Segment: table %q still open at end of sheet, flushed without grand total", acc.partial.table.Name)
		}
		s.flush(acc.partial)
		s.state = noOpenTable{}
	}

	tables := s.tables
	if tables == nil {
		tables = []domain.PricingTable{}
	}
	return &Segmentation{
		Tables:           tables,
		DocumentTotal:    s.rollup,
		DocumentTotalRow: s.rollupRow,
	}
}

// step is the transition function: it applies one row to the current state
// and returns the next state.
func (s *segmenter) step(row domain.ClassifiedRow) segmenterState {
	switch st := s.state.(type) {
	case accumulating:
		return s.stepAccumulating(st.partial, row)
	case noOpenTable:
		return s.stepIdle(st, row)
	default:
		return s.state
	}
}

func (s *segmenter) stepIdle(st noOpenTable, row domain.ClassifiedRow) segmenterState {
	switch row.Kind {
	case domain.RowSectionHeader:
		p := newPartial(row.Label, row.RowIndex)
		p.afterGrandTotal = st.afterGrandTotal
		return accumulating{partial: p}
	case domain.RowLineItem:
		if isAlternate(row) {
			s.attachAlternate(nil, row)
			return st
		}
		p := newPartial("", -1)
		addItem(p, row)
		return accumulating{partial: p}
	case domain.RowGrandTotal:
		if st.afterGrandTotal {
			s.recordRollup(row)
		} else {
			log.Printf("pricing.Segment: grand total at row %d has no table, ignored", row.RowIndex)
		}
		return st
	case domain.RowSubtotal, domain.RowTax, domain.RowBond:
		log.Printf("pricing.Segment: orphan %s row %d ignored", row.Kind, row.RowIndex)
		return st
	default:
		return st
	}
}

func (s *segmenter) stepAccumulating(p *partialTable, row domain.ClassifiedRow) segmenterState {
	switch row.Kind {
	case domain.RowSectionHeader:
		if !p.empty() && p.source.GrandTotalRow < 0 {
			log.Printf("pricing.Segment: table %q closed by section %q without grand total", p.table.Name, row.Label)
		}
		next := newPartial(row.Label, row.RowIndex)
		next.afterGrandTotal = p.afterGrandTotal && p.empty()
		s.flush(p)
		return accumulating{partial: next}
	case domain.RowLineItem:
		if isAlternate(row) {
			s.attachAlternate(p, row)
		} else {
			addItem(p, row)
		}
	case domain.RowSubtotal:
		p.touch(row)
		p.table.Subtotal = recorded(row)
		p.source.SubtotalRow = row.RowIndex
	case domain.RowTax:
		p.touch(row)
		p.table.Tax = &domain.TaxLine{Amount: recorded(row), Rate: row.Rate}
	case domain.RowBond:
		p.touch(row)
		p.table.Bond = recorded(row)
		p.table.BondRate = row.Rate
	case domain.RowGrandTotal:
		// A title-only section ("Summary") whose grand total follows a closed
		// table summarizes the tables above it.
		if p.afterGrandTotal && p.empty() {
			log.Printf("pricing.Segment: section %q at row %d holds only a grand total, read as rollup", p.table.Name, p.source.HeaderRow)
			s.recordRollup(row)
			return noOpenTable{afterGrandTotal: true}
		}
		p.touch(row)
		p.table.GrandTotal = recorded(row)
		p.source.GrandTotalRow = row.RowIndex
		s.flush(p)
		return noOpenTable{afterGrandTotal: true}
	}
	return accumulating{partial: p}
}

// flush closes p and appends it to the output unless it carries nothing.
func (s *segmenter) flush(p *partialTable) {
	if p.empty() {
		if p.table.Name != "" {
			log.Printf("pricing.Segment: section %q at row %d has no content, dropped", p.table.Name, p.source.HeaderRow)
		}
		return
	}
	if p.source.FirstRow < 0 {
		p.source.FirstRow = p.source.HeaderRow
	}
	t := p.table
	t.ID = fmt.Sprintf("table-%d", len(s.tables)+1)
	t.Currency = p.currency
	if t.Currency == "" {
		t.Currency = s.defaultCurrency
	}
	src := p.source
	t.Source = &src
	s.tables = append(s.tables, t)

	if s.rollup != nil {
		log.Printf("pricing.Segment: rollup at row %d is followed by table %s, not a document total", s.rollupRow, t.ID)
		s.rollup = nil
		s.rollupRow = -1
	}
}

func (s *segmenter) recordRollup(row domain.ClassifiedRow) {
	v := recorded(row)
	s.rollup = &v
	s.rollupRow = row.RowIndex
	log.Printf("pricing.Segment: row %d is a document-level rollup grand total (%s), excluded", row.RowIndex, money.Format(money.Dec(v), 2))
}

// attachAlternate adds an alternate to the open table, or to the most
// recently closed one when none is open.
func (s *segmenter) attachAlternate(p *partialTable, row domain.ClassifiedRow) {
	if !money.IsFinite(row.SellingPrice) {
		return
	}
	alt := domain.PricingAlternate{Description: row.Label, PriceDelta: row.SellingPrice}
	switch {
	case p != nil:
		p.touch(row)
		p.table.Alternates = append(p.table.Alternates, alt)
	case len(s.tables) > 0:
		last := &s.tables[len(s.tables)-1]
		last.Alternates = append(last.Alternates, alt)
	default:
		log.Printf("pricing.Segment: alternate %q at row %d has no table, ignored", row.Label, row.RowIndex)
	}
}

// addItem appends a line item. A row without a usable price, or priced at
// exactly zero, is an included disclosure.
func addItem(p *partialTable, row domain.ClassifiedRow) {
	p.touch(row)
	item := domain.PricingLineItem{Description: row.Label}
	if row.Included || !money.IsFinite(row.SellingPrice) || row.SellingPrice == 0 {
		item.IsIncluded = true
	} else {
		item.SellingPrice = row.SellingPrice
	}
	p.table.Items = append(p.table.Items, item)
}

func isAlternate(row domain.ClassifiedRow) bool {
	return alternateKeyword.Match(row.Normalized)
}

// recorded is the spreadsheet's value for a total-style row: the selling
// price column, or zero when the cell has no number.
func recorded(row domain.ClassifiedRow) float64 {
	if money.IsFinite(row.SellingPrice) {
		return row.SellingPrice
	}
	return 0
}
