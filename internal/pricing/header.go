package pricing

import (
	"strings"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// DefaultScanRows is how many leading rows are searched for the header.
const DefaultScanRows = 40

// Header is the located header row and column layout of a pricing sheet.
type Header struct {
	Row      int
	LabelCol int
	CostCol  int
	SellCol  int
	// Currency is an ISO code named in the header row, if any.
	Currency string
}

// costSynonyms and sellSynonyms are matched against normalized header cells.
// A cell matches when it equals a synonym or a synonym appears as a whole
// phrase within it ("Selling Price (USD)"). sellSynonyms is in priority order:
// when several cells match, the most specific synonym names the sell column.
var (
	costSynonyms = []string{"cost", "budgeted cost", "total cost", "project cost"}
	sellSynonyms = []string{"selling price", "sell price", "total price", "revenue", "amount", "price"}
)

// Normalize lowercases s and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// cellText returns the display text of a cell for label and keyword matching.
func cellText(c domain.Cell) string {
	switch c.Kind {
	case domain.CellText:
		return strings.TrimSpace(c.Text)
	case domain.CellNumber:
		if !money.IsFinite(c.Number) {
			return ""
		}
		return money.Dec(c.Number).String()
	default:
		return ""
	}
}

func matchesSynonym(cell string, synonyms []string) bool {
	return synonymRank(cell, synonyms) >= 0
}

// synonymRank returns the index of the first synonym cell matches, or -1.
func synonymRank(cell string, synonyms []string) int {
	if cell == "" {
		return -1
	}
	for i, syn := range synonyms {
		if cell == syn || containsPhrase(cell, syn) {
			return i
		}
	}
	return -1
}

// isAmountHeader reports whether a header cell names a cost or price column.
func isAmountHeader(cell string) bool {
	return matchesSynonym(cell, costSynonyms) || matchesSynonym(cell, sellSynonyms)
}

// containsPhrase reports whether phrase appears in s on word boundaries.
func containsPhrase(s, phrase string) bool {
	for start := 0; start < len(s); {
		idx := strings.Index(s[start:], phrase)
		if idx < 0 {
			return false
		}
		i := start + idx
		j := i + len(phrase)
		if (i == 0 || !isWordByte(s[i-1])) && (j == len(s) || !isWordByte(s[j])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

// LocateHeader scans the first scanRows rows of grid for a row holding both a
// cost synonym and a selling-price synonym. The first such row wins. When no
// row qualifies it returns a *domain.HeaderNotFoundError.
func LocateHeader(grid *domain.SheetGrid, scanRows int) (*Header, error) {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	limit := scanRows
	if limit > grid.RowCount() {
		limit = grid.RowCount()
	}

	for r := 0; r < limit; r++ {
		costCol, sellCol, sellRank := -1, -1, len(sellSynonyms)
		currency := ""
		texts := make([]string, grid.ColumnCount(r))
		for c := range texts {
			raw := cellText(grid.Cell(r, c))
			text := Normalize(raw)
			texts[c] = text
			if text == "" {
				continue
			}
			// A cell naming both ("Cost Price") is a cost column.
			if matchesSynonym(text, costSynonyms) {
				if costCol < 0 {
					costCol = c
				}
			} else if rank := synonymRank(text, sellSynonyms); rank >= 0 && rank < sellRank {
				sellCol, sellRank = c, rank
			}
			if currency == "" {
				currency = money.DetectCurrency(raw)
			}
		}
		if costCol < 0 || sellCol < 0 {
			continue
		}
		return &Header{
			Row:      r,
			LabelCol: labelColumn(texts, costCol, sellCol),
			CostCol:  costCol,
			SellCol:  sellCol,
			Currency: currency,
		}, nil
	}

	return nil, &domain.HeaderNotFoundError{Sheet: grid.Name, ScanRows: scanRows}
}

// labelColumn is the column left of cost, skipping columns whose header names
// another amount ("Unit Price"). It is column 0 when nothing qualifies.
func labelColumn(texts []string, costCol, sellCol int) int {
	for c := costCol - 1; c >= 0; c-- {
		if c != sellCol && !isAmountHeader(texts[c]) {
			return c
		}
	}
	return 0
}
