package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

func sheetName(t Table) string {
	if len(t.Name) > maxSheetName {
		return t.Name[:maxSheetName]
	}
	return t.Name
}

// WriteWorkbook saves every table to its own sheet of one workbook. The
// first row of each sheet is the header, the first column the year.
func WriteWorkbook(path string, tables []Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, t := range tables {
		sheet := sheetName(t)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		header := make([]any, 0, len(t.Columns)+1)
		header = append(header, "Year")
		for _, c := range t.Columns {
			header = append(header, c)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("writing header of %s: %w", sheet, err)
		}

		for r, y := range t.Years {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := make([]any, 0, len(t.Rows[r])+1)
			row = append(row, y)
			for _, v := range t.Rows[r] {
				row = append(row, v)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sheet, y, err)
			}
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
