package workbook_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ancpricing/internal/domain"
	"ancpricing/internal/pricing"
	"ancpricing/internal/workbook"
)

func buildWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetName("Sheet1", "Cover"))
	require.NoError(t, f.SetCellValue("Cover", "A1", "Proposal"))

	_, err := f.NewSheet("Margin Analysis")
	require.NoError(t, err)
	rows := [][]any{
		{"Item", "Cost", "Selling Price"},
		{"Display A", 100.40, 100.49},
		{"CMS Software", 20, nil},
		{"Display B", 200, 200.49},
		{"Subtotal", nil, 300.98},
		{"Grand Total", nil, 300.98},
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Margin Analysis", cell, &row))
	}
	return f
}

func TestRead_SheetsAndCells(t *testing.T) {
	f := buildWorkbook(t)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grids, err := workbook.Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, grids, 2)
	assert.Equal(t, "Cover", grids[0].Name)
	assert.Equal(t, "Margin Analysis", grids[1].Name)

	g := &grids[1]
	assert.Equal(t, domain.TextCell("Item"), g.Cell(0, 0))
	assert.Equal(t, domain.NumberCell(100.49), g.Cell(1, 2))
	assert.True(t, g.Cell(2, 2).IsBlank(), "missing selling price reads as blank")
	assert.Equal(t, domain.NumberCell(20), g.Cell(2, 1))
}

func TestRead_ParsesEndToEnd(t *testing.T) {
	f := buildWorkbook(t)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grids, err := workbook.ReadBytes(buf.Bytes())
	require.NoError(t, err)

	doc, grid, err := pricing.ParseWorkbook(grids, pricing.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Margin Analysis", grid.Name)
	require.Len(t, doc.Tables, 1)
	require.Len(t, doc.Tables[0].Items, 3)
	assert.True(t, doc.Tables[0].Items[1].IsIncluded)
}

func TestReadFile(t *testing.T) {
	f := buildWorkbook(t)
	path := filepath.Join(t.TempDir(), "pricing.xlsx")
	require.NoError(t, f.SaveAs(path))

	grids, err := workbook.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, grids, 2)
}

func TestRead_InvalidBytes(t *testing.T) {
	_, err := workbook.ReadBytes([]byte("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)

	_, err = workbook.ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)
}

func TestParseCell(t *testing.T) {
	assert.Equal(t, domain.BlankCell(), workbook.ParseCell("  "))
	assert.Equal(t, domain.NumberCell(1234.5), workbook.ParseCell("1234.5"))
	assert.Equal(t, domain.NumberCell(-3), workbook.ParseCell("-3"))
	assert.Equal(t, domain.TextCell("$1,000"), workbook.ParseCell("$1,000"))
	assert.Equal(t, domain.TextCell("NaN"), workbook.ParseCell("NaN"))
	assert.Equal(t, domain.TextCell("Included"), workbook.ParseCell(" Included "))
}
