// Convert a flight table CSV to XLSX.
//
// Usage: go run ./cmd/csv2xlsx -in flights.csv [-out flights.xlsx] [-verify]
package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"miq-flights/internal/table"
)

func main() {
	in := flag.String("in", "", "CSV table to convert")
	out := flag.String("out", "", "XLSX output (default: input with .xlsx extension)")
	verify := flag.Bool("verify", false, "read the spreadsheet back and compare it with the CSV")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required")
		os.Exit(2)
	}
	if *out == "" {
		*out = strings.TrimSuffix(*in, ".csv") + ".xlsx"
	}

	if err := table.ConvertToXLSX(*in, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		want, err := table.ReadCSV(*in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		got, err := table.ReadXLSX(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !reflect.DeepEqual(got, want) {
			fmt.Fprintf(os.Stderr, "Error: %s does not match %s (%d vs %d rows)\n", *out, *in, len(got), len(want))
			os.Exit(1)
		}
		fmt.Printf("Verified %d rows\n", len(got))
	}

	fmt.Printf("Wrote %s\n", *out)
}
