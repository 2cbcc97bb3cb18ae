// Package workbook reads spreadsheet files into sheet grids.
package workbook

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ancpricing/internal/domain"
)

// Read opens a workbook from r and returns every sheet in workbook order.
// Cells carry the values cached by the authoring application; formulas are
// never evaluated.
func Read(r io.Reader) ([]domain.SheetGrid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("workbook.Read: closing workbook: %v", cerr)
		}
	}()
	return readSheets(f)
}

// ReadBytes is Read over an in-memory file.
func ReadBytes(data []byte) ([]domain.SheetGrid, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile opens the workbook at path.
func ReadFile(path string) ([]domain.SheetGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("workbook.ReadFile: closing %s: %v", path, cerr)
		}
	}()
	return readSheets(f)
}

func readSheets(f *excelize.File) ([]domain.SheetGrid, error) {
	names := f.GetSheetList()
	grids := make([]domain.SheetGrid, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		grid := domain.SheetGrid{Name: name, Rows: make([][]domain.Cell, len(rows))}
		for r, row := range rows {
			cells := make([]domain.Cell, len(row))
			for c, v := range row {
				cells[c] = ParseCell(v)
			}
			grid.Rows[r] = cells
		}
		grids = append(grids, grid)
	}
	return grids, nil
}

// ParseCell normalizes a raw cell string: empty is blank, a plain finite
// number is numeric, and anything else is text.
func ParseCell(raw string) domain.Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.BlankCell()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return domain.NumberCell(v)
	}
	return domain.TextCell(s)
}
