package office

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
)

// Number decodes from a JSON number or a numeric string. Anything else is zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = Number(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Number(f)
	}
	return nil
}

// Flag decodes from a JSON boolean or from the strings "true", "yes" and "1".
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = false
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			*f = true
		}
	case float64:
		*f = t != 0
	}
	return nil
}

// Employee is one roster entry of an office, keyed by phone number.
type Employee struct {
	Name                      string `json:"Name"`
	EmployeeContact           string `json:"Employee Contact"`
	EmployeeCode              string `json:"Employee Code"`
	Department                string `json:"Department"`
	BaseLocation              string `json:"Base Location"`
	WeeklyOff                 string `json:"Weekly Off"`
	DailyStartTime            string `json:"Daily Start Time"`
	DailyEndTime              string `json:"Daily End Time"`
	MinimumWorkingHours       Number `json:"Minimum Working Hours"`
	MinimumDailyActivityCount Number `json:"Minimum Daily Activity Count"`
	LocationValidationCheck   Flag   `json:"Location Validation Check"`
	CreateTime                int64  `json:"createTime"`
}

type Office struct {
	ID            string              `json:"-"`
	Name          string              `json:"office"`
	Status        template.Status     `json:"status"`
	Attachment    template.Attachment `json:"attachment"`
	EmployeesData map[string]Employee `json:"employeesData"`
	Timestamp     int64               `json:"timestamp"`
}

// Timezone is the IANA zone name configured on the office, or "".
func (o *Office) Timezone() string {
	return o.Attachment.String("Timezone")
}

// Location resolves the office timezone, falling back to fallback and then UTC.
func (o *Office) Location(fallback string) *time.Location {
	for _, name := range []string{o.Timezone(), fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// FirstDayOfMonthlyCycle is the day of month a pay cycle starts on, 1 when unset.
func (o *Office) FirstDayOfMonthlyCycle() int {
	var day float64
	switch v := o.Attachment["First Day Of Monthly Cycle"].Value.(type) {
	case float64:
		day = v
	case string:
		day, _ = strconv.ParseFloat(v, 64)
	}
	if day < 1 || day > 31 {
		return 1
	}
	return int(day)
}

func (o *Office) Cancelled() bool {
	return o.Status == template.StatusCancelled
}

// Period is one dated schedule slot of a branch, such as a public holiday.
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

// endOfDaySlack lets a slot stored with an inclusive 23:59 end still cover its day.
const endOfDaySlack = time.Minute

// Covers reports whether the period spans the whole day [dayStart, dayEnd).
// A slot that only touches the day or fills part of it does not count.
func (p Period) Covers(dayStart, dayEnd time.Time) bool {
	if p.Start.IsZero() || p.End.IsZero() {
		return false
	}
	return !p.Start.After(dayStart) && !p.End.Before(dayEnd.Add(-endOfDaySlack))
}

// Branch is a branch activity of an office. Employees whose Base Location names the
// branch observe its holidays.
type Branch struct {
	Name     string
	Holidays []Period
}

// HolidayOn reports whether any holiday of the branch covers the day.
func (b Branch) HolidayOn(dayStart, dayEnd time.Time) bool {
	for _, p := range b.Holidays {
		if p.Covers(dayStart, dayEnd) {
			return true
		}
	}
	return false
}
