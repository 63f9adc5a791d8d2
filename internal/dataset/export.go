package dataset

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"gpsys/internal"
)

// ExportXLSX writes a loaded dataset to a spreadsheet for manual review.
func ExportXLSX(records []internal.PracticeRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range enrichedHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.Commissioner)
		set(2, rec.ODSCode)
		set(3, rec.Name)
		set(4, rec.RawSystems)
		set(5, rec.MainSystem)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
