package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"khata/internal/domain"
)

const statementSheet = "Statement"

// WriteStatementXLSX writes the statement as a single-sheet workbook. Money
// columns are stored as numbers so they can be summed in a spreadsheet.
func WriteStatementXLSX(w io.Writer, st *domain.PartyStatement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	title := "Statement"
	if st.Party != nil {
		title = "Statement: " + st.Party.Name
	}
	if err := f.SetCellValue(statementSheet, "A1", title); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	rows := statementRows(st)
	for i, row := range rows {
		r := i + 3
		for c, cell := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return err
			}
			var value interface{} = cell
			if i > 0 && c >= 3 && cell != "" {
				if n, err := decimal.NewFromString(cell); err == nil {
					value, _ = n.Float64()
				}
			}
			if err := f.SetCellValue(statementSheet, ref, value); err != nil {
				return err
			}
		}
	}

	last := len(rows) + 2
	if err := f.SetCellStyle(statementSheet, "A3", "F3", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(statementSheet, "D4", fmt.Sprintf("F%d", last), money); err != nil {
		return err
	}
	if err := f.SetColWidth(statementSheet, "A", "B", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(statementSheet, "C", "C", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(statementSheet, "D", "F", 14); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
