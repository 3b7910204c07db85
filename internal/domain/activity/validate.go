package activity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

// Fields that must hold a unique value among activities of the same template in an office.
var uniqueFields = map[string]bool{"Name": true, "Number": true}

// Phone number fields whose owner must already have signed up.
var signedUpFields = map[string]bool{"Admin": true, "Subscriber": true}

// ReferenceCheck requires an activity of Template named Value to exist in the office.
type ReferenceCheck struct {
	Field    string
	Template string
	Value    string
}

// UniqueCheck requires no activity of Template to hold Value in the attachment field Field.
type UniqueCheck struct {
	Field    string
	Template string
	Value    any
}

// DisplayValue formats Value for messages.
func (c UniqueCheck) DisplayValue() string {
	if f, ok := c.Value.(float64); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(c.Value)
}

// AttachmentResult lists what a valid attachment still needs checked against the store.
type AttachmentResult struct {
	PhoneNumbers      []string
	ProfilesMustExist []string
	MustExist         []ReferenceCheck
	MustNotExist      []UniqueCheck
}

// ValidateSchedules checks the request schedule against the slot names of the template.
func ValidateSchedules(schedules []Schedule, names []string) ([]Schedule, error) {
	if len(schedules) != len(names) {
		return nil, apperror.BadRequest("Expected %d item(s) in the schedule. Found %d", len(names), len(schedules))
	}
	out := make([]Schedule, len(schedules))
	for i, s := range schedules {
		if s.Name != names[i] {
			return nil, apperror.BadRequest("Invalid schedule name '%s' at position %d. Expected '%s'", s.Name, i, names[i])
		}
		if s.StartTime.IsZero() != s.EndTime.IsZero() {
			return nil, apperror.BadRequest("The startTime and endTime of the schedule '%s' must both be set or both be empty", s.Name)
		}
		if s.StartTime > s.EndTime {
			return nil, apperror.BadRequest("The startTime of the schedule '%s' cannot be after its endTime", s.Name)
		}
		out[i] = s
	}
	return out, nil
}

// ValidateVenues checks the request venues against the venue descriptors of the template.
func ValidateVenues(venues []Venue, descriptors []string) ([]Venue, error) {
	if len(venues) != len(descriptors) {
		return nil, apperror.BadRequest("Expected %d item(s) in the venue. Found %d", len(descriptors), len(venues))
	}
	out := make([]Venue, len(venues))
	for i, v := range venues {
		if v.VenueDescriptor != descriptors[i] {
			return nil, apperror.BadRequest("Invalid venueDescriptor '%s' at position %d. Expected '%s'", v.VenueDescriptor, i, descriptors[i])
		}
		if v.Geopoint != nil && !validator.IsValidGeopoint(v.Geopoint.Latitude, v.Geopoint.Longitude) {
			return nil, apperror.BadRequest("The geopoint of the venue '%s' is invalid", v.VenueDescriptor)
		}
		if v.Geopoint != nil && validator.IsEmpty(v.Location) {
			return nil, apperror.BadRequest("The venue '%s' has a geopoint but no location", v.VenueDescriptor)
		}
		out[i] = v
	}
	return out, nil
}

// ValidateAttachment checks every field of the attachment against the declared descriptors
// of templateName and collects the store lookups the values imply.
func ValidateAttachment(descriptors []template.FieldDescriptor, attachment template.Attachment, templateName string) (*AttachmentResult, error) {
	declared := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		declared[d.Name] = true
	}
	unknown := make([]string, 0)
	for name := range attachment {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperror.BadRequest("Unexpected field '%s' in the attachment", unknown[0])
	}

	result := &AttachmentResult{}
	for _, d := range descriptors {
		field, ok := attachment[d.Name]
		if !ok {
			return nil, apperror.BadRequest("The field '%s' is missing from the attachment", d.Name)
		}
		if field.Type != d.Type.String() {
			return nil, apperror.BadRequest("The type of the field '%s' should be '%s'", d.Name, d.Type)
		}
		if err := checkValue(d, field.Value, templateName, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func checkValue(d template.FieldDescriptor, value any, templateName string, result *AttachmentResult) error {
	switch d.Type.Kind {
	case template.KindNumber:
		switch v := value.(type) {
		case float64:
			if uniqueFields[d.Name] && templateName != template.NameOffice {
				result.MustNotExist = append(result.MustNotExist, UniqueCheck{Field: d.Name, Template: templateName, Value: v})
			}
			return nil
		case string:
			if v == "" {
				return nil
			}
		}
		return apperror.BadRequest("The value of the field '%s' should be a number", d.Name)
	case template.KindBoolean:
		if _, ok := value.(bool); !ok {
			return apperror.BadRequest("The value of the field '%s' should be a boolean", d.Name)
		}
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return apperror.BadRequest("The value of the field '%s' should be a string", d.Name)
	}
	if d.Name == "Name" && validator.IsEmpty(s) {
		return apperror.BadRequest("The field 'Name' cannot be empty")
	}
	if s == "" {
		return nil
	}

	switch d.Type.Kind {
	case template.KindEmail:
		if !validator.IsValidEmail(s) {
			return apperror.BadRequest("The value of the field '%s' should be a valid email", d.Name)
		}
	case template.KindPhoneNumber:
		if !validator.IsE164PhoneNumber(s) {
			return apperror.BadRequest("The value of the field '%s' should be a valid phone number", d.Name)
		}
		result.PhoneNumbers = append(result.PhoneNumbers, s)
		if signedUpFields[d.Name] {
			result.ProfilesMustExist = append(result.ProfilesMustExist, s)
		}
	case template.KindHHMM:
		if !validator.IsHHMM(s) {
			return apperror.BadRequest("The value of the field '%s' should be in the format HH:MM", d.Name)
		}
	case template.KindWeekday:
		if !validator.IsWeekday(s) {
			return apperror.BadRequest("The value of the field '%s' should be a weekday", d.Name)
		}
	case template.KindBase64:
		if !validator.IsBase64(s) {
			return apperror.BadRequest("The value of the field '%s' should be a base64 string", d.Name)
		}
	case template.KindReference:
		result.MustExist = append(result.MustExist, ReferenceCheck{Field: d.Name, Template: d.Type.Reference, Value: s})
	}

	if uniqueFields[d.Name] && templateName != template.NameOffice {
		result.MustNotExist = append(result.MustNotExist, UniqueCheck{Field: d.Name, Template: templateName, Value: s})
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Name builds the display name of an activity from its attachment.
func Name(templateName string, attachment template.Attachment, requester Requester) string {
	label := strings.ToUpper(templateName) + ": "
	if v := attachment.String("Name"); v != "" {
		return label + v
	}
	if f, ok := attachment["Number"]; ok {
		switch v := f.Value.(type) {
		case string:
			if v != "" {
				return label + v
			}
		case float64:
			return label + formatNumber(v)
		}
	}
	if requester.DisplayName != "" {
		return label + requester.DisplayName
	}
	return label + requester.PhoneNumber
}
