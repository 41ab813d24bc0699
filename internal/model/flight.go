package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the portal's date format, also used in the output table.
const DateLayout = "2006-01-02"

// Header is the fixed header row of the output table.
var Header = []string{
	"Date of Arrival",
	"Day of the Week",
	"Airlines",
	"Flight Number",
	"Origin",
	"Arrival Port",
	"Est. Arrival Time (NZ)",
}

// FlightRecord represents a single scheduled arrival listed by the flight checker.
type FlightRecord struct {
	DateOfArrival        time.Time `json:"-"`
	DayOfWeek            string    `json:"day_of_week"`
	Carrier              string    `json:"carrier"`
	FlightNumber         string    `json:"flight_number"`
	Origin               string    `json:"origin"`
	ArrivalPort          string    `json:"arrival_port"`
	EstimatedArrivalTime string    `json:"estimated_arrival_time"`
}

// Date returns the arrival date formatted as YYYY-MM-DD.
func (r FlightRecord) Date() string {
	return r.DateOfArrival.Format(DateLayout)
}

// Row renders the record in Header order.
func (r FlightRecord) Row() []string {
	return []string{
		r.Date(),
		r.DayOfWeek,
		r.Carrier,
		r.FlightNumber,
		r.Origin,
		r.ArrivalPort,
		r.EstimatedArrivalTime,
	}
}

// MarshalJSON writes the arrival date as YYYY-MM-DD rather than a timestamp.
func (r FlightRecord) MarshalJSON() ([]byte, error) {
	type plain FlightRecord
	return json.Marshal(struct {
		Date string `json:"date_of_arrival"`
		plain
	}{r.Date(), plain(r)})
}
