package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// SheetName is the worksheet holding exported records
const SheetName = "Data"

// WriteXLSX writes ds as a single-sheet workbook with the same columns as
// WriteCSV. Values are numeric cells; missing values are blank.
func WriteXLSX(w io.Writer, ds analytics.Dataset, variables []analytics.Variable) error {
	variables = orAll(variables)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	head := header(variables)
	cells := make([]interface{}, len(head))
	for i, h := range head {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for rowIdx, r := range ds {
		row := make([]interface{}, len(variables)+1)
		row[0] = r.Date
		for i, v := range variables {
			if x, ok := r.Get(v); ok {
				row[i+1] = x
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write record %s: %w", r.Date, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
