package attendance

import (
	"fmt"
	"time"
)

// DayStatus is the attendance outcome of one employee on one day.
type DayStatus struct {
	OnLeave          bool    `json:"onLeave"`
	OnAr             bool    `json:"onAr"`
	Holiday          bool    `json:"holiday"`
	WeeklyOff        bool    `json:"weeklyOff"`
	Blank            bool    `json:"blank"`
	FirstCheckIn     string  `json:"firstCheckIn"`
	LastCheckIn      string  `json:"lastCheckIn"`
	StatusForDay     float64 `json:"statusForDay"`
	NumberOfCheckIns int     `json:"numberOfCheckIns"`
	HoursWorked      int     `json:"hoursWorked"`
}

// Payable is the day value used in the PayDay grid.
func (d DayStatus) Payable() float64 {
	if d.OnLeave || d.OnAr || d.WeeklyOff || d.Holiday {
		return 1
	}
	return d.StatusForDay
}

// MonthlyAggregate maps day of month to status for one employee and month.
type MonthlyAggregate struct {
	ID           string            `json:"-"`
	PhoneNumber  string            `json:"phoneNumber"`
	Month        int               `json:"month"`
	Year         int               `json:"year"`
	StatusObject map[int]DayStatus `json:"statusObject"`
}

// MonthlyID is the deterministic document id of an aggregate. Months are 1-indexed.
func MonthlyID(phone string, year, month int) string {
	return fmt.Sprintf("%s-%d-%d", phone, year, month)
}

// CheckIn is one check-in event of an employee.
type CheckIn struct {
	Timestamp        int64
	DistanceAccurate bool
}

// Entry is a day status staged for an employee's aggregate.
type Entry struct {
	PhoneNumber string
	Year        int
	Month       int
	Day         int
	Status      DayStatus
}

// MonthKey identifies one aggregate document.
type MonthKey struct {
	PhoneNumber string
	Year        int
	Month       int
}

// RollupResult summarises one office rollup.
type RollupResult struct {
	OfficeID  string               `json:"officeId"`
	Office    string               `json:"office"`
	Date      string               `json:"date"`
	Employees int                  `json:"employees"`
	Batches   int                  `json:"batches"`
	Deleted   int                  `json:"deleted"`
	Statuses  map[string]DayStatus `json:"statuses"`
}

// CycleStart returns the most recent day-of-month firstDay on or before day.
// Months shorter than firstDay start their cycle on their last day.
func CycleStart(day time.Time, firstDay int) time.Time {
	start := cycleDay(day.Year(), day.Month(), firstDay, day.Location())
	if start.After(day) {
		prev := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location()).AddDate(0, -1, 0)
		start = cycleDay(prev.Year(), prev.Month(), firstDay, day.Location())
	}
	return start
}

func cycleDay(year int, month time.Month, firstDay int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	return time.Date(year, month, min(firstDay, last), 0, 0, 0, 0, loc)
}
