// Package pricingtest builds in-memory sheet grids for tests.
package pricingtest

import (
	"fmt"

	"ancpricing/internal/domain"
)

// Grid builds a sheet from rows of Go values: nil or "" is blank, numbers
// are numeric cells, anything else is text.
func Grid(name string, rows ...[]any) *domain.SheetGrid {
	g := &domain.SheetGrid{Name: name, Rows: make([][]domain.Cell, len(rows))}
	for r, row := range rows {
		cells := make([]domain.Cell, len(row))
		for c, v := range row {
			cells[c] = cell(v)
		}
		g.Rows[r] = cells
	}
	return g
}

func cell(v any) domain.Cell {
	switch x := v.(type) {
	case nil:
		return domain.BlankCell()
	case string:
		if x == "" {
			return domain.BlankCell()
		}
		return domain.TextCell(x)
	case int:
		return domain.NumberCell(float64(x))
	case float64:
		return domain.NumberCell(x)
	case domain.Cell:
		return x
	default:
		return domain.TextCell(fmt.Sprint(x))
	}
}

// Header is the standard three-column header row.
func Header() []any { return []any{"Item", "Cost", "Selling Price"} }

// ScenarioA is one implicit table with two items, subtotal, tax at 9.5%,
// bond at 1.5% and a grand total.
func ScenarioA() *domain.SheetGrid {
	return Grid("Margin Analysis",
		Header(),
		[]any{"Display A", 100.40, 100.49},
		[]any{"Display B", 200.00, 200.49},
		[]any{"Subtotal", nil, 300.98},
		[]any{"Tax 9.5%", nil, 28.59},
		[]any{"Bond", "1.5%", 4.51},
		[]any{"Grand Total", nil, 334.08},
	)
}

// ScenarioB is two named sections, each closed by its own grand total, with
// no document-level total.
func ScenarioB() *domain.SheetGrid {
	return Grid("Margin Analysis",
		Header(),
		[]any{"Main Video Board"},
		[]any{"LED Panels", 800, 1000},
		[]any{"Installation", 150, 250},
		[]any{"Subtotal", nil, 1250},
		[]any{"Grand Total", nil, 1250},
		nil,
		[]any{"Concourse Ribbon"},
		[]any{"Ribbon Display", 400, 500},
		[]any{"Subtotal", nil, 500},
		[]any{"Grand Total", nil, 500},
	)
}

// ScenarioC has an item with a cost but a blank selling price between two
// priced items.
func ScenarioC() *domain.SheetGrid {
	return Grid("Margin Analysis",
		Header(),
		[]any{"Display A", 100, 150},
		[]any{"CMS Software", 20, nil},
		[]any{"Display B", 200, 250},
		[]any{"Subtotal", nil, 400},
		[]any{"Grand Total", nil, 400},
	)
}

// ScenarioE closes one table with two grand totals in succession.
func ScenarioE() *domain.SheetGrid {
	return Grid("Margin Analysis",
		Header(),
		[]any{"Main Display"},
		[]any{"LED Panels", 800, 1000},
		[]any{"Subtotal", nil, 1000},
		[]any{"Grand Total", nil, 1000},
		[]any{"Project Total", nil, 1000},
	)
}
