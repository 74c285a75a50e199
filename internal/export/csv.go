// Package export renders party statements as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"khata/internal/domain"
	"khata/internal/sanitize"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns is the statement header row.
var columns = []string{
	"Date",
	"Type",
	"Reference",
	"Debit",
	"Credit",
	"Balance",
}

// Writer wraps csv.Writer for exporting statements as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteStatement writes the header, an opening row, every line and a closing row.
func (w *Writer) WriteStatement(st *domain.PartyStatement) error {
	for _, row := range statementRows(st) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// statementRows lays the statement out as string cells shared by both formats.
func statementRows(st *domain.PartyStatement) [][]string {
	rows := make([][]string, 0, len(st.Lines)+3)
	rows = append(rows, columns)
	rows = append(rows, []string{"", "opening_balance", "", "", "", formatMoney(st.OpeningBalance)})
	for i := range st.Lines {
		l := &st.Lines[i]
		rows = append(rows, []string{
			l.EntryDate.String(),
			l.EntryType,
			sanitize.ForSpreadsheet(l.Reference),
			formatMoney(l.Debit),
			formatMoney(l.Credit),
			formatMoney(l.Balance),
		})
	}
	rows = append(rows, []string{"", "closing_balance", "", "", "", formatMoney(st.ClosingBalance)})
	return rows
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a party name for use in Content-Disposition.
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
		s = "statement"
	}
	return s
}

// BuildFilename returns {sanitized_party_name}_statement_{YYYY-MM-DD}.{ext}.
func BuildFilename(partyName, ext string) string {
	return fmt.Sprintf("%s_statement_%s.%s", SanitizeFilename(partyName), time.Now().Format("2006-01-02"), ext)
}
