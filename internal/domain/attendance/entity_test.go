package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCycleStart(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		day      time.Time
		firstDay int
		want     time.Time
	}{
		{"calendar month", day(2024, 3, 15), 1, day(2024, 3, 1)},
		{"after cycle day", day(2024, 3, 25), 21, day(2024, 3, 21)},
		{"on cycle day", day(2024, 3, 21), 21, day(2024, 3, 21)},
		{"before cycle day", day(2024, 3, 5), 21, day(2024, 2, 21)},
		{"across year", day(2024, 1, 3), 26, day(2023, 12, 26)},
		{"short month", day(2024, 3, 10), 31, day(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CycleStart(tt.day, tt.firstDay))
		})
	}
}

func TestDayStatus_Payable(t *testing.T) {
	assert.Equal(t, 1.0, DayStatus{OnLeave: true}.Payable())
	assert.Equal(t, 1.0, DayStatus{Holiday: true, StatusForDay: 0}.Payable())
	assert.Equal(t, 0.75, DayStatus{StatusForDay: 0.75}.Payable())
	assert.Equal(t, "+911-2024-3", MonthlyID("+911", 2024, 3))
}
