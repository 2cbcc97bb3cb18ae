package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"ancpricing/internal/domain"
	"ancpricing/internal/money"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Table ID",
	"Table",
	"Row Type",
	"Description",
	"Included",
	"Amount",
	"Currency",
}

// Row types written in the "Row Type" column.
const (
	RowTypeItem          = "item"
	RowTypeSubtotal      = "subtotal"
	RowTypeTax           = "tax"
	RowTypeBond          = "bond"
	RowTypeGrandTotal    = "grand_total"
	RowTypeDocumentTotal = "document_total"
)

// Writer wraps csv.Writer for exporting rendered pricing totals as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTotals writes one row per rendered item, the four total rows of every
// table, and a closing document total row. doc supplies table names; totals
// must have been computed from doc.
func (w *Writer) WriteTotals(doc *domain.PricingDocument, totals *domain.DocumentTotals) error {
	names := make(map[string]string, len(doc.Tables))
	for i := range doc.Tables {
		names[doc.Tables[i].ID] = doc.Tables[i].Name
	}
	p := totals.Precision

	for i := range totals.Tables {
		tt := &totals.Tables[i]
		name := names[tt.TableID]
		for _, item := range tt.Items {
			if err := w.csv.Write([]string{
				tt.TableID, name, RowTypeItem, item.Description,
				formatBool(item.IsIncluded), formatMoney(item.SellingPrice, p), totals.Currency,
			}); err != nil {
				return err
			}
		}
		for _, line := range []struct {
			kind   string
			label  string
			amount float64
		}{
			{RowTypeSubtotal, "Subtotal", tt.Subtotal},
			{RowTypeTax, "Tax", tt.Tax},
			{RowTypeBond, "Bond", tt.Bond},
			{RowTypeGrandTotal, "Grand Total", tt.GrandTotal},
		} {
			if err := w.csv.Write([]string{
				tt.TableID, name, line.kind, line.label, "", formatMoney(line.amount, p), totals.Currency,
			}); err != nil {
				return err
			}
		}
	}
	return w.csv.Write([]string{
		"", "", RowTypeDocumentTotal, "Document Total", "", formatMoney(totals.DocumentTotal, p), totals.Currency,
	})
}

// Export writes a complete export to w: the UTF-8 BOM, the header row and the
// totals rows.
func Export(w io.Writer, doc *domain.PricingDocument, totals *domain.DocumentTotals) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteTotals(doc, totals); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func formatMoney(v float64, precision int32) string {
	return money.Format(money.Dec(v), precision)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "pricing"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_totals_{YYYY-MM-DD}.csv
func BuildFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_totals_%s.csv", SanitizeFilename(name), now.Format("2006-01-02"))
}
