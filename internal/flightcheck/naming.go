package flightcheck

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// ReferenceZone is where the portal publishes its schedule; output files
// are stamped with the run time there.
const ReferenceZone = "Pacific/Auckland"

const outputPrefix = "NZMIQ_Flights_Data_as_of_"

// OutputBaseName returns the file name stem for a run started at now, for
// example NZMIQ_Flights_Data_as_of_2021_11_01_Time_02_PM_NZDT.
func OutputBaseName(now time.Time) (string, error) {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", ReferenceZone, err)
	}
	return outputPrefix + now.In(loc).Format("2006_01_02_Time_03_PM_MST"), nil
}
