package table

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"miq-flights/internal/model"
)

func sampleRecords(n int) []model.FlightRecord {
	start := time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)
	var recs []model.FlightRecord
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i/3)
		recs = append(recs, model.FlightRecord{
			DateOfArrival:        d,
			DayOfWeek:            d.Weekday().String(),
			Carrier:              "Air New Zealand, Ltd",
			FlightNumber:         fmt.Sprintf("NZ%03d", 100+i),
			Origin:               "SYD",
			ArrivalPort:          "AKL",
			EstimatedArrivalTime: fmt.Sprintf("%02d:30", i%24),
		})
	}
	return recs
}

func TestWriteAndConvert(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "flights.csv")
	xlsxPath := filepath.Join(dir, "out", "flights.xlsx")

	recs := sampleRecords(7)

	w, err := Create(csvPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if w.Count() != len(recs) {
		t.Errorf("Count() = %d, want %d", w.Count(), len(recs))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := ConvertToXLSX(csvPath, xlsxPath); err != nil {
		t.Fatalf("ConvertToXLSX failed: %v", err)
	}

	want := [][]string{model.Header}
	for _, r := range recs {
		want = append(want, r.Row())
	}

	csvRows, err := ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(csvRows, want) {
		t.Errorf("CSV rows mismatch\n got: %q\nwant: %q", csvRows, want)
	}

	xlsxRows, err := ReadXLSX(xlsxPath)
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}
	if len(xlsxRows) != len(recs)+1 {
		t.Fatalf("spreadsheet has %d rows, want %d", len(xlsxRows), len(recs)+1)
	}
	if !reflect.DeepEqual(xlsxRows, want) {
		t.Errorf("XLSX rows mismatch\n got: %q\nwant: %q", xlsxRows, want)
	}
}

func TestHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "empty.csv")
	xlsxPath := filepath.Join(dir, "empty.xlsx")

	w, err := Create(csvPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := ConvertToXLSX(csvPath, xlsxPath); err != nil {
		t.Fatalf("ConvertToXLSX failed: %v", err)
	}

	rows, err := ReadXLSX(xlsxPath)
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{model.Header}) {
		t.Errorf("rows = %q, want header only", rows)
	}
}

func TestPartialTableReadableBeforeClose(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "partial.csv")

	w, err := Create(csvPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer w.Close()

	for _, r := range sampleRecords(2) {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	rows, err := ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows before Close, want 3", len(rows))
	}
}

func TestConvertMissingCSV(t *testing.T) {
	dir := t.TempDir()
	if err := ConvertToXLSX(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "nope.xlsx")); err == nil {
		t.Error("expected error for missing CSV")
	}
}
