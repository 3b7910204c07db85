package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounts_Total(t *testing.T) {
	var c Counts
	for _, l := range []string{LabelFullDay, LabelLate, LeaveLabel("casual"), LabelHoliday, LabelOnDuty, LabelWeeklyOff, LabelHalfDay, LabelBlank, ""} {
		c.Add(l)
	}

	assert.Equal(t, Counts{FullDay: 1, HalfDay: 1, Leave: 1, Holiday: 1, Blank: 2, Late: 1, OnDuty: 1, WeeklyOff: 1}, c)
	assert.Equal(t, 6.5, c.Total())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "LEAVE", LeaveLabel(""))
	assert.Equal(t, "LEAVE - sick", LeaveLabel("sick"))
	assert.True(t, Blocks("LEAVE - sick"))
	assert.True(t, Blocks(LabelOnDuty))
	assert.False(t, Blocks(LabelFullDay))
	assert.Equal(t, "payroll-o1-2024-3", InitID("o1", 2024, 3))

	var missing *Init
	assert.Empty(t, missing.Label("+911", 3))
}
