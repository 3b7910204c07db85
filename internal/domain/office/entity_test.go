package office

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployee_DecodesLooseRosterValues(t *testing.T) {
	raw := `{
		"Name": "Asha",
		"Weekly Off": "sunday",
		"Minimum Working Hours": "8",
		"Minimum Daily Activity Count": 4,
		"Location Validation Check": "true"
	}`

	var e Employee
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "Asha", e.Name)
	assert.Equal(t, Number(8), e.MinimumWorkingHours)
	assert.Equal(t, Number(4), e.MinimumDailyActivityCount)
	assert.True(t, bool(e.LocationValidationCheck))
}

func TestEmployee_EmptyValuesDecodeToZero(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"Minimum Working Hours": "", "Location Validation Check": ""}`), &e))

	assert.Zero(t, e.MinimumWorkingHours)
	assert.False(t, bool(e.LocationValidationCheck))
}

func TestOffice_CycleAndLocation(t *testing.T) {
	o := &Office{Attachment: template.Attachment{
		"Timezone":                   {Type: "string", Value: "Asia/Kolkata"},
		"First Day Of Monthly Cycle": {Type: "number", Value: 21.0},
	}}

	assert.Equal(t, 21, o.FirstDayOfMonthlyCycle())
	assert.Equal(t, "Asia/Kolkata", o.Location("UTC").String())

	empty := &Office{}
	assert.Equal(t, 1, empty.FirstDayOfMonthlyCycle())
	assert.Equal(t, "UTC", empty.Location("Not/AZone").String())
}

func TestBranch_HolidayOn(t *testing.T) {
	loc := time.UTC
	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	tests := []struct {
		name   string
		period Period
		want   bool
	}{
		{"exact day", Period{Start: dayStart, End: dayEnd}, true},
		{"inclusive end of day", Period{Start: dayStart, End: dayEnd.Add(-time.Minute)}, true},
		{"spans the day", Period{Start: dayStart.AddDate(0, 0, -2), End: dayEnd.AddDate(0, 0, 2)}, true},
		{"partial slot", Period{Start: dayStart.Add(14 * time.Hour), End: dayStart.Add(16 * time.Hour)}, false},
		{"ends at day start", Period{Start: dayStart.AddDate(0, 0, -1), End: dayStart}, false},
		{"ends before day end", Period{Start: dayStart, End: dayEnd.Add(-time.Hour)}, false},
		{"starts at day end", Period{Start: dayEnd, End: dayEnd.Add(time.Hour)}, false},
		{"previous day", Period{Start: dayStart.AddDate(0, 0, -1), End: dayStart.Add(-time.Minute)}, false},
		{"unset", Period{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Branch{Name: "HQ", Holidays: []Period{tt.period}}
			assert.Equal(t, tt.want, b.HolidayOn(dayStart, dayEnd))
		})
	}
}
