// Package table writes flight records to CSV and converts the result to XLSX.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"miq-flights/internal/model"
)

// Writer appends flight records to a CSV file. Every row is flushed as it
// is written so an aborted run leaves a readable partial table.
type Writer struct {
	path  string
	f     *os.File
	w     *csv.Writer
	count int
}

// Create creates (or truncates) the CSV file at path and writes the header.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	w := &Writer{path: path, f: f, w: csv.NewWriter(f)}
	if err := w.writeRow(model.Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(r model.FlightRecord) error {
	if err := w.writeRow(r.Row()); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	w.count++
	return nil
}

func (w *Writer) writeRow(row []string) error {
	if err := w.w.Write(row); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}

// Count returns the number of data rows written, excluding the header.
func (w *Writer) Count() int {
	return w.count
}

// Path returns the CSV file path.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
