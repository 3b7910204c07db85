package attendance

import (
	"strings"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/utils"
)

const clockLayout = "15:04"

// dayFacts is everything known about one employee on the target day before check-ins.
type dayFacts struct {
	holiday bool
	weekday time.Weekday
	label   string
}

// isWeeklyOff compares the configured weekly off with weekday by English name.
func isWeeklyOff(e office.Employee, weekday time.Weekday) bool {
	off := strings.ToLower(strings.TrimSpace(e.WeeklyOff))
	return off != "" && off == strings.ToLower(weekday.String())
}

// presetStatus returns the status decided without check-ins, if any. The first matching
// rule wins: branch holiday, weekly off, then a leave or on duty label.
func presetStatus(e office.Employee, f dayFacts) (attendance.DayStatus, bool) {
	switch {
	case f.holiday:
		return attendance.DayStatus{Holiday: true, StatusForDay: 1}, true
	case isWeeklyOff(e, f.weekday):
		return attendance.DayStatus{WeeklyOff: true, StatusForDay: 1}, true
	case payroll.IsLeave(f.label):
		return attendance.DayStatus{OnLeave: true, StatusForDay: 1}, true
	case f.label == payroll.LabelOnDuty:
		return attendance.DayStatus{OnAr: true, StatusForDay: 1}, true
	}
	return attendance.DayStatus{}, false
}

// checkInStatus scores a day from its check-ins, ordered by time.
func checkInStatus(e office.Employee, checkIns []attendance.CheckIn, loc *time.Location) attendance.DayStatus {
	if len(checkIns) == 0 {
		return attendance.DayStatus{Blank: true}
	}

	first := time.UnixMilli(checkIns[0].Timestamp).In(loc)
	last := time.UnixMilli(checkIns[len(checkIns)-1].Timestamp).In(loc)
	worked := last.Sub(first).Hours()

	minCount := float64(e.MinimumDailyActivityCount)
	if minCount <= 0 {
		minCount = 1
	}
	status := min(1, utils.FloorToQuarter(float64(len(checkIns))/minCount))
	if minHours := float64(e.MinimumWorkingHours); minHours > 0 {
		status = min(status, min(1, utils.FloorToQuarter(worked/minHours)))
	}

	return attendance.DayStatus{
		FirstCheckIn:     first.Format(clockLayout),
		LastCheckIn:      last.Format(clockLayout),
		StatusForDay:     status,
		NumberOfCheckIns: len(checkIns),
		HoursWorked:      int(worked),
	}
}
