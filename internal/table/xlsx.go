package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the converted table is written to.
const SheetName = "Flights"

// ConvertToXLSX copies the CSV table at csvPath into a new spreadsheet at
// xlsxPath, preserving row and column order. All cells are stored as text.
func ConvertToXLSX(csvPath, xlsxPath string) error {
	in, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", csvPath, err)
	}
	defer in.Close()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	r := csv.NewReader(in)
	for n := 1; ; n++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", csvPath, err)
		}

		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", n, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if err := f.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("saving %s: %w", xlsxPath, err)
	}
	return nil
}

// ReadXLSX returns the rows of the first sheet in the spreadsheet at path.
// Trailing empty cells are not included.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return rows, nil
}

// ReadCSV returns every row of the CSV table at path, header included.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}
