package timer

import (
	"fmt"
	"time"
)

// Timer marks one nightly run. Sent is set when the run is claimed, Done when it finished.
type Timer struct {
	ID        string `json:"-"`
	Sent      bool   `json:"sent"`
	Done      bool   `json:"done"`
	Timestamp int64  `json:"timestamp"`
}

// TimerID formats the day as DD-MM-YYYY.
func TimerID(day time.Time) string {
	return day.Format("02-01-2006")
}

const ReportDailyStatus = "daily status report"

// DailyStatus is the Init document counting report triggers of one day.
type DailyStatus struct {
	ID                             string `json:"-"`
	Report                         string `json:"report"`
	Date                           int    `json:"date"`
	Month                          int    `json:"month"`
	Year                           int    `json:"year"`
	ExpectedRecipientTriggersCount int    `json:"expectedRecipientTriggersCount"`
	RecipientsTriggeredToday       int    `json:"recipientsTriggeredToday"`
}

func DailyStatusID(day time.Time) string {
	return fmt.Sprintf("daily-status-%s", day.Format("2006-01-02"))
}

// FireResult summarises a nightly run.
type FireResult struct {
	Date          string   `json:"date"`
	AlreadySent   bool     `json:"alreadySent"`
	Offices       int      `json:"offices"`
	FailedOffices []string `json:"failedOffices,omitempty"`
	Reports       int      `json:"reports"`
	FailedReports []string `json:"failedReports,omitempty"`
}
