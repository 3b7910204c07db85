package activity

import (
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

type CreateActivityRequest struct {
	Template    string               `json:"template"`
	Office      string               `json:"office"`
	Timestamp   int64                `json:"timestamp"`
	Geopoint    *Geopoint            `json:"geopoint"`
	Schedule    []Schedule           `json:"schedule"`
	Venue       []Venue              `json:"venue"`
	Attachment  template.Attachment  `json:"attachment"`
	Share       []string             `json:"share"`
	CanEditRule template.CanEditRule `json:"canEditRule,omitempty"`
}

func (r *CreateActivityRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Template) {
		errs = append(errs, validator.ValidationError{Field: "template", Message: "template is required"})
	}
	if validator.IsEmpty(r.Office) {
		errs = append(errs, validator.ValidationError{Field: "office", Message: "office is required"})
	}
	if r.Timestamp <= 0 {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be a unix timestamp in milliseconds"})
	}
	if r.Geopoint == nil || !validator.IsValidGeopoint(r.Geopoint.Latitude, r.Geopoint.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "geopoint", Message: "geopoint must contain a valid latitude and longitude"})
	}
	if r.Schedule == nil {
		errs = append(errs, validator.ValidationError{Field: "schedule", Message: "schedule must be an array"})
	}
	if r.Venue == nil {
		errs = append(errs, validator.ValidationError{Field: "venue", Message: "venue must be an array"})
	}
	if r.Attachment == nil {
		errs = append(errs, validator.ValidationError{Field: "attachment", Message: "attachment must be an object"})
	}
	for i, phone := range r.Share {
		if !validator.IsE164PhoneNumber(phone) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("share[%d]", i),
				Message: fmt.Sprintf("%q is not a valid phone number", phone),
			})
		}
	}
	if r.CanEditRule != "" && !r.CanEditRule.Valid() {
		errs = append(errs, validator.ValidationError{Field: "canEditRule", Message: "canEditRule is not a known rule"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateActivityResponse struct {
	ActivityID string `json:"activityId"`
	Status     string `json:"status"`
}

// SingleRequest creates an activity, or updates one when ActivityID is set.
type SingleRequest struct {
	CreateActivityRequest
	ActivityID string `json:"activityId,omitempty"`
}

type UnassignRequest struct {
	ActivityID string    `json:"activityId"`
	Remove     []string  `json:"remove"`
	Timestamp  int64     `json:"timestamp"`
	Geopoint   *Geopoint `json:"geopoint"`
}

func (r *UnassignRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ActivityID) {
		errs = append(errs, validator.ValidationError{Field: "activityId", Message: "activityId is required"})
	}
	if len(r.Remove) == 0 {
		errs = append(errs, validator.ValidationError{Field: "remove", Message: "remove must list at least one phone number"})
	}
	for i, phone := range r.Remove {
		if !validator.IsE164PhoneNumber(phone) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("remove[%d]", i),
				Message: fmt.Sprintf("%q is not a valid phone number", phone),
			})
		}
	}
	if r.Timestamp <= 0 {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be a unix timestamp in milliseconds"})
	}
	if r.Geopoint == nil || !validator.IsValidGeopoint(r.Geopoint.Latitude, r.Geopoint.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "geopoint", Message: "geopoint must contain a valid latitude and longitude"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
