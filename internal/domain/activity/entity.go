package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
)

// Actions recorded on addendum entries.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionRemove = "remove"
)

// Millis is a unix timestamp in milliseconds. Zero means unset and is encoded as "".
type Millis int64

func (m Millis) MarshalJSON() ([]byte, error) {
	if m == 0 {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" || string(b) == `""` {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid millisecond timestamp %q", b)
	}
	*m = Millis(f)
	return nil
}

func (m Millis) IsZero() bool {
	return m == 0
}

func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

type Geopoint struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Schedule is a named time window.
type Schedule struct {
	Name      string `json:"name"`
	StartTime Millis `json:"startTime"`
	EndTime   Millis `json:"endTime"`
}

// Set reports whether both ends of the window are present.
func (s Schedule) Set() bool {
	return !s.StartTime.IsZero() && !s.EndTime.IsZero()
}

// Days lists the calendar days the window touches in loc, as local midnights in order.
func (s Schedule) Days(loc *time.Location) []time.Time {
	if !s.Set() || s.EndTime < s.StartTime {
		return nil
	}
	start, end := s.StartTime.Time().In(loc), s.EndTime.Time().In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

type Venue struct {
	VenueDescriptor string    `json:"venueDescriptor"`
	Address         string    `json:"address"`
	Location        string    `json:"location"`
	Geopoint        *Geopoint `json:"geopoint"`
}

type Activity struct {
	ID             string               `json:"-"`
	Template       string               `json:"template"`
	Office         string               `json:"office"`
	OfficeID       string               `json:"officeId"`
	ActivityName   string               `json:"activityName"`
	Schedule       []Schedule           `json:"schedule"`
	Venue          []Venue              `json:"venue"`
	Attachment     template.Attachment  `json:"attachment"`
	Status         template.Status      `json:"status"`
	CanEditRule    template.CanEditRule `json:"canEditRule"`
	Creator        string               `json:"creator"`
	Hidden         int                  `json:"hidden"`
	Timestamp      int64                `json:"timestamp"`
	AddendumDocRef string               `json:"addendumDocRef"`
}

type Assignee struct {
	PhoneNumber  string `json:"-"`
	CanEdit      bool   `json:"canEdit"`
	AddToInclude bool   `json:"addToInclude"`
}

// AddendumPath is the document path stored in Activity.AddendumDocRef.
func AddendumPath(officeID, addendumID string) string {
	return fmt.Sprintf("Offices/%s/Addendum/%s", officeID, addendumID)
}

// Addendum is one audit entry for an activity. Check-in entries carry DistanceAccurate;
// leave entries carry the balance fields.
type Addendum struct {
	ID                   string    `json:"-"`
	ActivityData         Activity  `json:"activityData"`
	Date                 int       `json:"date"`
	Month                int       `json:"month"`
	Year                 int       `json:"year"`
	DateString           string    `json:"dateString"`
	User                 string    `json:"user"`
	UserDisplayName      string    `json:"userDisplayName"`
	Share                []string  `json:"share"`
	Action               string    `json:"action"`
	Template             string    `json:"template"`
	Location             *Geopoint `json:"location"`
	Timestamp            int64     `json:"timestamp"`
	UserDeviceTimestamp  int64     `json:"userDeviceTimestamp"`
	ActivityID           string    `json:"activityId"`
	ActivityName         string    `json:"activityName"`
	IsSupportRequest     bool      `json:"isSupportRequest"`
	DistanceAccurate     *bool     `json:"distanceAccurate,omitempty"`
	AnnualLeavesEntitled *float64  `json:"annualLeavesEntitled,omitempty"`
	TotalLeavesRemaining *float64  `json:"totalLeavesRemaining,omitempty"`
	TotalLeavesTaken     *float64  `json:"totalLeavesTaken,omitempty"`
	Removed              []string  `json:"removed,omitempty"`
}

// Subscription holds a user's defaults for creating activities of one template in one office.
type Subscription struct {
	ID             string               `json:"-"`
	Office         string               `json:"office"`
	OfficeID       string               `json:"officeId"`
	Template       string               `json:"template"`
	Include        []string             `json:"include"`
	Schedule       []string             `json:"schedule"`
	Venue          []string             `json:"venue"`
	Attachment     template.Attachment  `json:"attachment"`
	CanEditRule    template.CanEditRule `json:"canEditRule"`
	StatusOnCreate template.Status      `json:"statusOnCreate"`
	Status         template.Status      `json:"status"`
	Hidden         int                  `json:"hidden"`
	Timestamp      int64                `json:"timestamp"`
}

// ProfileActivity indexes an activity under each assignee's profile.
type ProfileActivity struct {
	ActivityID string          `json:"-"`
	OfficeID   string          `json:"officeId"`
	Office     string          `json:"office"`
	CanEdit    bool            `json:"canEdit"`
	Status     template.Status `json:"status"`
	Timestamp  int64           `json:"timestamp"`
}

type Profile struct {
	PhoneNumber string `json:"-"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
}

// SignedUp reports whether the profile is linked to an auth identity.
func (p *Profile) SignedUp() bool {
	return p != nil && p.UID != ""
}

// Requester identifies the caller of an activity operation.
type Requester struct {
	PhoneNumber      string
	DisplayName      string
	UID              string
	IsSupportRequest bool
}
