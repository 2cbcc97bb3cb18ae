package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ancpricing/internal/domain"
	"ancpricing/internal/pricing"
)

func row(i int, kind domain.RowKind, label string, sell float64) domain.ClassifiedRow {
	return domain.ClassifiedRow{
		RowIndex:     i,
		Label:        label,
		Normalized:   pricing.Normalize(label),
		Cost:         nan,
		SellingPrice: sell,
		Kind:         kind,
	}
}

func TestSegment_ImplicitTable(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowLineItem, "Display A", 100),
		row(2, domain.RowSubtotal, "Subtotal", 100),
		row(3, domain.RowGrandTotal, "Grand Total", 100),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	tbl := seg.Tables[0]
	assert.Equal(t, "table-1", tbl.ID)
	assert.Equal(t, "", tbl.Name)
	assert.Equal(t, "USD", tbl.Currency)
	assert.Equal(t, 100.0, tbl.Subtotal)
	assert.Equal(t, 100.0, tbl.GrandTotal)
	require.NotNil(t, tbl.Source)
	assert.Equal(t, domain.TableSource{HeaderRow: -1, FirstRow: 1, LastRow: 3, SubtotalRow: 2, GrandTotalRow: 3}, *tbl.Source)
	assert.Nil(t, seg.DocumentTotal)
}

func TestSegment_SectionHeaderFlushesOpenTable(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Zone A", nan),
		row(2, domain.RowLineItem, "Panel", 10),
		row(3, domain.RowSectionHeader, "Zone B", nan),
		row(4, domain.RowLineItem, "Panel", 20),
		row(5, domain.RowGrandTotal, "Total", 20),
	}, "USD")

	require.Len(t, seg.Tables, 2)
	assert.Equal(t, "Zone A", seg.Tables[0].Name)
	assert.Equal(t, -1, seg.Tables[0].Source.GrandTotalRow)
	assert.Equal(t, "Zone B", seg.Tables[1].Name)
	assert.Equal(t, "table-2", seg.Tables[1].ID)
}

func TestSegment_EmptySectionDropped(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Arena Package", nan),
		row(2, domain.RowSectionHeader, "Main Display", nan),
		row(3, domain.RowLineItem, "Panel", 10),
		row(4, domain.RowGrandTotal, "Grand Total", 10),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	assert.Equal(t, "Main Display", seg.Tables[0].Name)
	assert.Equal(t, "table-1", seg.Tables[0].ID)
}

func TestSegment_IncludedItems(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowLineItem, "Display", 100),
		row(2, domain.RowLineItem, "CMS Software", nan),
		row(3, domain.RowLineItem, "Warranty", 0),
		row(4, domain.RowGrandTotal, "Grand Total", 100),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	items := seg.Tables[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, domain.PricingLineItem{Description: "Display", SellingPrice: 100}, items[0])
	assert.Equal(t, domain.PricingLineItem{Description: "CMS Software", IsIncluded: true}, items[1])
	assert.Equal(t, domain.PricingLineItem{Description: "Warranty", IsIncluded: true}, items[2])
}

func TestSegment_TaxAndBond(t *testing.T) {
	rate := 0.095
	tax := row(3, domain.RowTax, "Tax 9.5%", 9.5)
	tax.Rate = &rate

	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowLineItem, "Display", 100),
		row(2, domain.RowSubtotal, "Subtotal", 100),
		tax,
		row(4, domain.RowBond, "Bond", 1.5),
		row(5, domain.RowGrandTotal, "Grand Total", 111),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	tbl := seg.Tables[0]
	require.NotNil(t, tbl.Tax)
	assert.Equal(t, 9.5, tbl.Tax.Amount)
	require.NotNil(t, tbl.Tax.Rate)
	assert.Equal(t, 0.095, *tbl.Tax.Rate)
	assert.Equal(t, 1.5, tbl.Bond)
	assert.Nil(t, tbl.BondRate)
}

func TestSegment_DuplicateGrandTotalIsRollup(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "Panel", 1000),
		row(3, domain.RowGrandTotal, "Grand Total", 1000),
		row(4, domain.RowGrandTotal, "Project Total", 1000),
	}, "USD")

	require.Len(t, seg.Tables, 1, "second grand total must not create a table")
	assert.Equal(t, 3, seg.Tables[0].Source.GrandTotalRow)
	require.NotNil(t, seg.DocumentTotal)
	assert.Equal(t, 1000.0, *seg.DocumentTotal)
	assert.Equal(t, 4, seg.DocumentTotalRow)
}

func TestSegment_RollupAcrossEmptyAndOrphanRows(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowLineItem, "Panel", 100),
		row(2, domain.RowGrandTotal, "Grand Total", 100),
		row(3, domain.RowEmpty, "", nan),
		row(4, domain.RowSubtotal, "Subtotal", 100),
		row(5, domain.RowGrandTotal, "Total", 100),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	assert.Equal(t, -1, seg.Tables[0].Source.SubtotalRow, "orphan subtotal is not applied to the closed table")
	require.NotNil(t, seg.DocumentTotal)
}

func TestSegment_IntermediateRollupNotDocumentTotal(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "LED", 1000),
		row(3, domain.RowGrandTotal, "Grand Total", 1000),
		row(4, domain.RowGrandTotal, "Grand Total", 1000),
		row(5, domain.RowSectionHeader, "Ribbon Display", nan),
		row(6, domain.RowLineItem, "Ribbon", 500),
		row(7, domain.RowGrandTotal, "Grand Total", 500),
	}, "USD")

	require.Len(t, seg.Tables, 2)
	assert.Nil(t, seg.DocumentTotal, "a rollup followed by another table is not the document total")
	assert.Equal(t, -1, seg.DocumentTotalRow)
}

func TestSegment_TrailingRollupAfterSeveralTables(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "LED", 1000),
		row(3, domain.RowGrandTotal, "Grand Total", 1000),
		row(4, domain.RowGrandTotal, "Grand Total", 1000),
		row(5, domain.RowSectionHeader, "Ribbon Display", nan),
		row(6, domain.RowLineItem, "Ribbon", 500),
		row(7, domain.RowGrandTotal, "Grand Total", 500),
		row(8, domain.RowGrandTotal, "Project Total", 1500),
	}, "USD")

	require.Len(t, seg.Tables, 2)
	require.NotNil(t, seg.DocumentTotal)
	assert.Equal(t, 1500.0, *seg.DocumentTotal)
	assert.Equal(t, 8, seg.DocumentTotalRow)
}

func TestSegment_SummarySectionIsRollup(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "LED", 1000),
		row(3, domain.RowGrandTotal, "Grand Total", 1000),
		row(4, domain.RowSectionHeader, "Project", nan),
		row(5, domain.RowSectionHeader, "Summary", nan),
		row(6, domain.RowGrandTotal, "Grand Total", 1000),
	}, "USD")

	require.Len(t, seg.Tables, 1, "summary grand total must not become a table")
	require.NotNil(t, seg.DocumentTotal)
	assert.Equal(t, 1000.0, *seg.DocumentTotal)
	assert.Equal(t, 6, seg.DocumentTotalRow)
}

func TestSegment_EmptySectionGrandTotalWithoutPriorTable(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Summary", nan),
		row(2, domain.RowGrandTotal, "Grand Total", 0),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	assert.Nil(t, seg.DocumentTotal)
}

func TestSegment_GrandTotalBeforeAnyTableIgnored(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowGrandTotal, "Total", 50),
	}, "USD")
	assert.Empty(t, seg.Tables)
	assert.Nil(t, seg.DocumentTotal)
}

func TestSegment_Alternates(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "Panel", 1000),
		row(3, domain.RowLineItem, "Alternate 1 - Upgrade to 6mm", 250),
		row(4, domain.RowLineItem, "Alternates", nan),
		row(5, domain.RowGrandTotal, "Grand Total", 1000),
		row(6, domain.RowLineItem, "Alternate 2 - Deduct Install", -150),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	tbl := seg.Tables[0]
	assert.Len(t, tbl.Items, 1)
	assert.Equal(t, []domain.PricingAlternate{
		{Description: "Alternate 1 - Upgrade to 6mm", PriceDelta: 250},
		{Description: "Alternate 2 - Deduct Install", PriceDelta: -150},
	}, tbl.Alternates)
}

func TestSegment_OpenAtEndOfSheet(t *testing.T) {
	seg := pricing.Segment([]domain.ClassifiedRow{
		row(1, domain.RowSectionHeader, "Main Display", nan),
		row(2, domain.RowLineItem, "Panel", 1000),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	assert.Equal(t, -1, seg.Tables[0].Source.GrandTotalRow)
	assert.Equal(t, 2, seg.Tables[0].Source.LastRow)
}

func TestSegment_TableCurrencyFromRows(t *testing.T) {
	item := row(1, domain.RowLineItem, "Panel", 100)
	item.Currency = "CAD"
	seg := pricing.Segment([]domain.ClassifiedRow{
		item,
		row(2, domain.RowGrandTotal, "Grand Total", 100),
	}, "USD")

	require.Len(t, seg.Tables, 1)
	assert.Equal(t, "CAD", seg.Tables[0].Currency)
}

func TestSegment_NoRows(t *testing.T) {
	seg := pricing.Segment(nil, "USD")
	assert.NotNil(t, seg.Tables)
	assert.Empty(t, seg.Tables)
}
