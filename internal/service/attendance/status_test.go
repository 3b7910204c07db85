package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
)

func TestPresetStatus(t *testing.T) {
	e := office.Employee{WeeklyOff: "Tuesday"}

	tests := []struct {
		name  string
		facts dayFacts
		want  attendance.DayStatus
		ok    bool
	}{
		{"holiday wins over weekly off", dayFacts{holiday: true, weekday: time.Tuesday}, attendance.DayStatus{Holiday: true, StatusForDay: 1}, true},
		{"weekly off", dayFacts{weekday: time.Tuesday, label: "LEAVE"}, attendance.DayStatus{WeeklyOff: true, StatusForDay: 1}, true},
		{"typed leave", dayFacts{weekday: time.Monday, label: "LEAVE - sick"}, attendance.DayStatus{OnLeave: true, StatusForDay: 1}, true},
		{"on duty", dayFacts{weekday: time.Monday, label: "ON DUTY"}, attendance.DayStatus{OnAr: true, StatusForDay: 1}, true},
		{"working day", dayFacts{weekday: time.Monday, label: "FULL DAY"}, attendance.DayStatus{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := presetStatus(e, tt.facts)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckInStatus(t *testing.T) {
	at := func(h, m int) attendance.CheckIn {
		return attendance.CheckIn{Timestamp: time.Date(2024, 3, 5, h, m, 0, 0, time.UTC).UnixMilli()}
	}

	tests := []struct {
		name     string
		employee office.Employee
		checkIns []attendance.CheckIn
		status   float64
		hours    int
	}{
		{"no check-ins", office.Employee{}, nil, 0, 0},
		{"default minimum count", office.Employee{}, []attendance.CheckIn{at(9, 0)}, 1, 0},
		{"activity ratio floors to a quarter", office.Employee{MinimumDailyActivityCount: 3}, []attendance.CheckIn{at(9, 0), at(10, 0)}, 0.5, 1},
		{"ratio is capped", office.Employee{MinimumDailyActivityCount: 1}, []attendance.CheckIn{at(9, 0), at(10, 0), at(11, 0)}, 1, 2},
		{"hours ratio is the lesser", office.Employee{MinimumDailyActivityCount: 2, MinimumWorkingHours: 8}, []attendance.CheckIn{at(9, 0), at(15, 15)}, 0.75, 6},
		{"activity ratio is the lesser", office.Employee{MinimumDailyActivityCount: 4, MinimumWorkingHours: 4}, []attendance.CheckIn{at(9, 0), at(18, 0)}, 0.5, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkInStatus(tt.employee, tt.checkIns, time.UTC)
			assert.Equal(t, tt.status, got.StatusForDay)
			assert.Equal(t, tt.hours, got.HoursWorked)
			assert.Equal(t, len(tt.checkIns), got.NumberOfCheckIns)
			assert.Equal(t, len(tt.checkIns) == 0, got.Blank)
			assert.GreaterOrEqual(t, got.StatusForDay, 0.0)
			assert.LessOrEqual(t, got.StatusForDay, 1.0)
		})
	}
}

func TestCheckInStatus_Clock(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	assert.NoError(t, err)
	checkIns := []attendance.CheckIn{
		{Timestamp: time.Date(2024, 3, 5, 3, 30, 0, 0, time.UTC).UnixMilli()},
		{Timestamp: time.Date(2024, 3, 5, 12, 45, 0, 0, time.UTC).UnixMilli()},
	}

	got := checkInStatus(office.Employee{}, checkIns, loc)

	assert.Equal(t, "09:00", got.FirstCheckIn)
	assert.Equal(t, "18:15", got.LastCheckIn)
}
