package pricingtest

import (
	"github.com/xuri/excelize/v2"

	"ancpricing/internal/domain"
)

// Workbook encodes grids as an xlsx file, one sheet per grid in order.
func Workbook(grids ...*domain.SheetGrid) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, g := range grids {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", g.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(g.Name); err != nil {
			return nil, err
		}
		for r, row := range g.Rows {
			for c, cell := range row {
				if cell.IsBlank() {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, err
				}
				var v any = cell.Text
				if cell.Kind == domain.CellNumber {
					v = cell.Number
				}
				if err := f.SetCellValue(g.Name, ref, v); err != nil {
					return nil, err
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
