package validator

import (
	"encoding/base64"
	"regexp"
	"slices"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// E.164: a plus sign followed by up to 15 digits, the first non-zero.
var e164Regex = regexp.MustCompile(`^\+[1-9]\d{5,14}$`)

func IsE164PhoneNumber(phone string) bool {
	return e164Regex.MatchString(phone)
}

var hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// IsHHMM reports whether s is a 24 hour clock time such as "09:30".
func IsHHMM(s string) bool {
	return hhmmRegex.MatchString(s)
}

var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// IsWeekday accepts full English weekday names in any case.
func IsWeekday(s string) bool {
	return slices.Contains(Weekdays, strings.ToLower(strings.TrimSpace(s)))
}

// IsBase64 accepts standard encoding with an optional data URL prefix.
func IsBase64(s string) bool {
	if s == "" {
		return false
	}
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func IsValidGeopoint(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
