package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
)

const clockLayout = "15:04"

const (
	fullDaySpan = 8 * time.Hour
	halfDaySpan = 4 * time.Hour
	lateGrace   = 30 * time.Minute
)

// dayCell is one employee-day of the report.
type dayCell struct {
	payDay float64
	timing string
	label  string
}

// classify maps the rolled up status of a day and its stored payroll label to the
// values of the three report grids. Leave and on-duty labels win over the status.
func classify(e office.Employee, status attendance.DayStatus, stored string) dayCell {
	switch {
	case payroll.IsLeave(stored):
		return dayCell{payDay: 1, timing: payroll.TimingOnLeave, label: stored}
	case status.OnLeave:
		return dayCell{payDay: 1, timing: payroll.TimingOnLeave, label: payroll.LabelLeave}
	case stored == payroll.LabelOnDuty || status.OnAr:
		return dayCell{payDay: 1, timing: payroll.LabelOnDuty, label: payroll.LabelOnDuty}
	case status.WeeklyOff:
		return dayCell{payDay: 1, timing: payroll.LabelWeeklyOff, label: payroll.LabelWeeklyOff}
	case status.Holiday:
		return dayCell{payDay: 1, timing: payroll.LabelHoliday, label: payroll.LabelHoliday}
	}

	cell := dayCell{payDay: status.StatusForDay, label: workLabel(e, status)}
	if status.FirstCheckIn == "" {
		cell.timing = fmt.Sprintf("%s, %d", payroll.TimingBlank, status.NumberOfCheckIns)
	} else {
		cell.timing = fmt.Sprintf("%s to %s, %d", status.FirstCheckIn, status.LastCheckIn, status.NumberOfCheckIns)
	}
	return cell
}

// workLabel grades a working day by the span between its first and last check-in.
func workLabel(e office.Employee, status attendance.DayStatus) string {
	if status.FirstCheckIn == status.LastCheckIn {
		return payroll.LabelBlank
	}
	first, err := time.Parse(clockLayout, status.FirstCheckIn)
	if err != nil {
		return payroll.LabelBlank
	}
	last, err := time.Parse(clockLayout, status.LastCheckIn)
	if err != nil {
		return payroll.LabelBlank
	}

	// The check-in window runs past midnight
	span := last.Sub(first)
	if span < 0 {
		span += 24 * time.Hour
	}

	switch {
	case span >= fullDaySpan:
		start, err := time.Parse(clockLayout, strings.TrimSpace(e.DailyStartTime))
		if err == nil && first.After(start.Add(lateGrace)) {
			return payroll.LabelLate
		}
		return payroll.LabelFullDay
	case span >= halfDaySpan:
		return payroll.LabelHalfDay
	default:
		return payroll.LabelBlank
	}
}

// details is the free text column describing an employee.
func details(e office.Employee) string {
	return fmt.Sprintf("Employee Contact: %s | Department: %s | Base Location: %s",
		e.EmployeeContact, e.Department, e.BaseLocation)
}

func liveSince(createTime int64, loc *time.Location) string {
	if createTime <= 0 {
		return ""
	}
	return time.UnixMilli(createTime).In(loc).Format(reportDateLayout)
}
