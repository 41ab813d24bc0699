// Package daterange walks the calendar days offered by the flight checker.
package daterange

import (
	"fmt"
	"iter"
	"time"

	"miq-flights/internal/model"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Min time.Time
	Max time.Time
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse builds a Range from YYYY-MM-DD bounds.
func Parse(minDate, maxDate string) (Range, error) {
	lo, err := time.Parse(model.DateLayout, minDate)
	if err != nil {
		return Range{}, fmt.Errorf("parsing min date: %w", err)
	}
	hi, err := time.Parse(model.DateLayout, maxDate)
	if err != nil {
		return Range{}, fmt.Errorf("parsing max date: %w", err)
	}
	return Range{Min: lo, Max: hi}, nil
}

// Empty reports whether the range holds no days.
func (r Range) Empty() bool {
	return Day(r.Min).After(Day(r.Max))
}

// Len returns the number of days in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	// Both ends are UTC midnights so the difference is a whole number of days.
	return int(Day(r.Max).Sub(Day(r.Min))/(24*time.Hour)) + 1
}

// Days yields every day from Min to Max inclusive. Each iteration of the
// returned sequence starts again from Min.
func (r Range) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		end := Day(r.Max)
		for d := Day(r.Min); !d.After(end); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min.Format(model.DateLayout), r.Max.Format(model.DateLayout))
}
