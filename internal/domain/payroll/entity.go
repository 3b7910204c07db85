package payroll

import (
	"fmt"
	"strings"
	"time"
)

// Day labels stored in the payrollObject of an Init document and used in the CSV report.
const (
	LabelFullDay   = "FULL DAY"
	LabelHalfDay   = "HALF DAY"
	LabelLeave     = "LEAVE"
	LabelHoliday   = "HOLIDAY"
	LabelBlank     = "BLANK"
	LabelLate      = "LATE"
	LabelOnDuty    = "ON DUTY"
	LabelWeeklyOff = "WEEKLY OFF"
)

// Labels of the PayDay Timings sheet that differ from the CSV vocabulary.
const (
	TimingOnLeave = "ON LEAVE"
	TimingBlank   = "-- to --"
)

const ReportPayroll = "payroll"

// LeaveLabel is the label a leave activity writes for each covered day.
func LeaveLabel(leaveType string) string {
	if leaveType == "" {
		return LabelLeave
	}
	return LabelLeave + " - " + leaveType
}

// IsLeave reports whether a label marks leave, typed or not.
func IsLeave(label string) bool {
	return strings.HasPrefix(label, LabelLeave)
}

// Blocks reports whether a label makes the day unavailable for a new leave or tour plan.
func Blocks(label string) bool {
	return IsLeave(label) || label == LabelOnDuty
}

// Init holds the classified day labels of an office for one month.
type Init struct {
	ID            string                    `json:"-"`
	Report        string                    `json:"report"`
	Office        string                    `json:"office"`
	OfficeID      string                    `json:"officeId"`
	Month         int                       `json:"month"`
	Year          int                       `json:"year"`
	PayrollObject map[string]map[int]string `json:"payrollObject"`
}

// Label returns the label of phone on day, or "".
func (i *Init) Label(phone string, day int) string {
	if i == nil {
		return ""
	}
	return i.PayrollObject[phone][day]
}

// InitID is the deterministic id of the payroll Init document. Months are 1-indexed.
func InitID(officeID string, year, month int) string {
	return fmt.Sprintf("%s-%s-%d-%d", ReportPayroll, officeID, year, month)
}

// Counts tallies the CSV labels of one employee over a cycle.
type Counts struct {
	FullDay   int `json:"fullDay"`
	HalfDay   int `json:"halfDay"`
	Leave     int `json:"leave"`
	Holiday   int `json:"holiday"`
	Blank     int `json:"blank"`
	Late      int `json:"late"`
	OnDuty    int `json:"onDuty"`
	WeeklyOff int `json:"weeklyOff"`
}

func (c *Counts) Add(label string) {
	switch {
	case IsLeave(label):
		c.Leave++
	case label == LabelFullDay:
		c.FullDay++
	case label == LabelHalfDay:
		c.HalfDay++
	case label == LabelHoliday:
		c.Holiday++
	case label == LabelLate:
		c.Late++
	case label == LabelOnDuty:
		c.OnDuty++
	case label == LabelWeeklyOff:
		c.WeeklyOff++
	default:
		c.Blank++
	}
}

// Total is the number of payable days. A half day counts as half.
func (c Counts) Total() float64 {
	return float64(c.FullDay+c.Late+c.Leave+c.Holiday+c.OnDuty+c.WeeklyOff) + 0.5*float64(c.HalfDay)
}

// Day is one column of the report.
type Day struct {
	Date time.Time `json:"date"`
}

// Header is the column title, such as "5-Mar".
func (d Day) Header() string {
	return d.Date.Format("2-Jan")
}

// Row is one employee of the report. PayDay, Timings and Labels are aligned with Report.Days.
type Row struct {
	PhoneNumber      string    `json:"phoneNumber"`
	Name             string    `json:"name"`
	EmployeeCode     string    `json:"employeeCode"`
	Department       string    `json:"department"`
	BaseLocation     string    `json:"baseLocation"`
	LiveSince        string    `json:"liveSince"`
	Details          string    `json:"details"`
	PayDay           []float64 `json:"payDay"`
	Timings          []string  `json:"timings"`
	Labels           []string  `json:"labels"`
	Counts           Counts    `json:"counts"`
	TotalPayableDays float64   `json:"totalPayableDays"`
}

type Report struct {
	OfficeID    string    `json:"officeId"`
	Office      string    `json:"office"`
	CycleStart  time.Time `json:"cycleStart"`
	CycleEnd    time.Time `json:"cycleEnd"`
	Days        []Day     `json:"days"`
	Rows        []Row     `json:"rows"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Artifact is a rendered report file.
type Artifact struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Recipient is a mailing list subscribed to a report of an office.
type Recipient struct {
	ID       string   `json:"-"`
	Report   string   `json:"report"`
	Office   string   `json:"office"`
	OfficeID string   `json:"officeId"`
	Include  []string `json:"include"`
	Status   string   `json:"status"`
}
