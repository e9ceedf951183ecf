package output

import (
	"fmt"

	"hoursync/timeentry"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, entries []timeentry.Entry) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := writeExcelRow(file, sheet, 1, entryHeaders); err != nil {
		return err
	}

	for i, entry := range entries {
		if err := writeExcelRow(file, sheet, i+2, entryValues(entry)); err != nil {
			return err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
