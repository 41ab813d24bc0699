package flightcheck

import (
	"testing"
	"time"
)

func TestOutputBaseName(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		// 01:30 UTC is 14:30 NZDT on the same day.
		{time.Date(2021, time.November, 1, 1, 30, 0, 0, time.UTC), "NZMIQ_Flights_Data_as_of_2021_11_01_Time_02_PM_NZDT"},
		// 22:00 UTC in winter rolls over to 10 AM NZST the next day.
		{time.Date(2021, time.June, 30, 22, 0, 0, 0, time.UTC), "NZMIQ_Flights_Data_as_of_2021_07_01_Time_10_AM_NZST"},
	}

	for _, tt := range tests {
		got, err := OutputBaseName(tt.now)
		if err != nil {
			t.Fatalf("OutputBaseName(%v) failed: %v", tt.now, err)
		}
		if got != tt.want {
			t.Errorf("OutputBaseName(%v) = %q, want %q", tt.now, got, tt.want)
		}
	}
}
