// Extract flight records from a saved flight-checker page.
// Reads the page from a file argument or stdin, outputs JSON to stdout.
//
// Usage: go run ./cmd/parse-page -date 2021-11-01 page.html
// Or:    cat page.html | go run ./cmd/parse-page -date 2021-11-01
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"miq-flights/internal/extract"
	"miq-flights/internal/model"
)

func main() {
	dateFlag := flag.String("date", "", "date the page was fetched for (YYYY-MM-DD)")
	flag.Parse()

	date, err := time.Parse(model.DateLayout, *dateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -date must be YYYY-MM-DD: %v\n", err)
		os.Exit(2)
	}

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	page, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading page: %v\n", err)
		os.Exit(1)
	}

	res, err := extract.Flights(date, string(page))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", s)
	}

	records := res.Records
	if records == nil {
		records = []model.FlightRecord{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
