package extract

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"miq-flights/internal/model"
)

func carrierBlock(name string, rows ...string) string {
	return `
  <div class="accordion__item">
    <div class="pt-4 pb-2 pb-sm-2">
      <h3><button type="button" class="accordion__button"> ` + name + ` <span class="icon"></span></button></h3>
    </div>
    <div class="accordion__content">
      <div class="pb-10">
        <table class="table">
          <thead><tr><th>Flight</th><th>Origin</th><th>Arrival port</th><th>Est. arrival</th></tr></thead>
          <tbody>` + strings.Join(rows, "\n") + `</tbody>
        </table>
      </div>
    </div>
  </div>`
}

func row(cells ...string) string {
	return `<tr class="d-block d-sm-table-row"><td>` + strings.Join(cells, "</td><td>") + `</td></tr>`
}

func page(blocks ...string) string {
	return `<!DOCTYPE html><html><head><title>Flight checker</title></head><body>
<main><div class="accordion">` + strings.Join(blocks, "\n") + `</div></main></body></html>`
}

var nov1 = time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)

func TestFlightsTwoRows(t *testing.T) {
	html := page(carrierBlock("Air New Zealand",
		row("NZ101", "SYD", "AKL", "14:30"),
		row("NZ247", "BNE", "CHC", "18:05"),
	))

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("unexpected skipped rows: %v", res.Skipped)
	}

	want := []model.FlightRecord{
		{DateOfArrival: nov1, DayOfWeek: "Monday", Carrier: "Air New Zealand", FlightNumber: "NZ101", Origin: "SYD", ArrivalPort: "AKL", EstimatedArrivalTime: "14:30"},
		{DateOfArrival: nov1, DayOfWeek: "Monday", Carrier: "Air New Zealand", FlightNumber: "NZ247", Origin: "BNE", ArrivalPort: "CHC", EstimatedArrivalTime: "18:05"},
	}
	if !reflect.DeepEqual(res.Records, want) {
		t.Errorf("records mismatch\n got: %+v\nwant: %+v", res.Records, want)
	}
}

func TestFlightsDiscardsEmptyCells(t *testing.T) {
	html := page(carrierBlock("Qantas", row("", " NZ123 ", "SYD", "AKL", "14:30", "")))

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d (skipped: %v)", len(res.Records), res.Skipped)
	}

	r := res.Records[0]
	if r.FlightNumber != "NZ123" || r.Origin != "SYD" || r.ArrivalPort != "AKL" || r.EstimatedArrivalTime != "14:30" {
		t.Errorf("unexpected fields: %+v", r)
	}
}

func TestFlightsIgnoresCellLabels(t *testing.T) {
	html := page(carrierBlock("Air New Zealand", row(
		`<span class="d-sm-none">Flight</span> NZ103 `,
		`<span class="d-sm-none">Origin</span>SYD`,
		`<span class="d-sm-none">Arrival port</span> AKL`,
		`<span class="d-sm-none">Est. arrival</span> 07:40`,
	)))

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if got := res.Records[0].Row(); !reflect.DeepEqual(got, []string{"2021-11-01", "Monday", "Air New Zealand", "NZ103", "SYD", "AKL", "07:40"}) {
		t.Errorf("Row() = %q", got)
	}
}

func TestFlightsSkipsShortRows(t *testing.T) {
	html := page(carrierBlock("Singapore Airlines",
		row("SQ285", "SIN", "AKL", "11:10"),
		row("SQ281", "SIN", "  ", ""),
		row("SQ247", "SIN", "CHC", "23:55"),
	))

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Records[0].FlightNumber != "SQ285" || res.Records[1].FlightNumber != "SQ247" {
		t.Errorf("unexpected order: %+v", res.Records)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("expected 1 skipped row, got %d", len(res.Skipped))
	}
	s := res.Skipped[0]
	if s.Block != 1 || s.Row != 2 || s.Carrier != "Singapore Airlines" {
		t.Errorf("unexpected skipped entry: %+v", s)
	}
	if !reflect.DeepEqual(s.Cells, []string{"SQ281", "SIN"}) {
		t.Errorf("skipped cells = %q", s.Cells)
	}
}

func TestFlightsDocumentOrder(t *testing.T) {
	html := page(
		carrierBlock("Air New Zealand", row("NZ1", "LAX", "AKL", "05:30"), row("NZ5", "LAX", "AKL", "06:00")),
		carrierBlock("Qantas", row("QF143", "SYD", "AKL", "13:00")),
		carrierBlock("Air New Zealand", row("NZ2", "LHR", "AKL", "22:00")),
	)

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}

	var got []string
	for _, r := range res.Records {
		got = append(got, r.Carrier+"/"+r.FlightNumber)
	}
	want := []string{"Air New Zealand/NZ1", "Air New Zealand/NZ5", "Qantas/QF143", "Air New Zealand/NZ2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestFlightsDayOfWeek(t *testing.T) {
	html := page(carrierBlock("Fiji Airways", row("FJ411", "NAN", "AKL", "16:20")))

	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC), "Monday"},
		{time.Date(2021, time.November, 6, 0, 0, 0, 0, time.UTC), "Saturday"},
		{time.Date(2021, time.December, 26, 0, 0, 0, 0, time.UTC), "Sunday"},
	}
	for _, tt := range tests {
		res, err := Flights(tt.date, html)
		if err != nil {
			t.Fatalf("Flights failed: %v", err)
		}
		if len(res.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(res.Records))
		}
		if got := res.Records[0].DayOfWeek; got != tt.want {
			t.Errorf("%s: DayOfWeek = %q, want %q", tt.date.Format(model.DateLayout), got, tt.want)
		}
		if !res.Records[0].DateOfArrival.Equal(tt.date) {
			t.Errorf("DateOfArrival = %v, want %v", res.Records[0].DateOfArrival, tt.date)
		}
	}
}

func TestFlightsSkipsBlockWithoutCarrier(t *testing.T) {
	nameless := `<div class="accordion__item"><div class="pb-10"><table><tbody>` +
		row("XX1", "AAA", "BBB", "10:00") + `</tbody></table></div></div>`
	html := page(nameless, carrierBlock("China Southern", row("CZ305", "CAN", "AKL", "10:45")))

	res, err := Flights(nov1, html)
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Records) != 1 || res.Records[0].Carrier != "China Southern" {
		t.Errorf("unexpected records: %+v", res.Records)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Block != 1 || res.Skipped[0].Row != 0 {
		t.Errorf("unexpected skipped: %+v", res.Skipped)
	}
}

func TestFlightsNoBlocks(t *testing.T) {
	res, err := Flights(nov1, page(`<p>No flights are scheduled for this date.</p>`))
	if err != nil {
		t.Fatalf("Flights failed: %v", err)
	}
	if len(res.Records) != 0 || len(res.Skipped) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}
