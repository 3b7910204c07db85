package template

import (
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

type CreateTemplateRequest struct {
	Name           string      `json:"name"`
	DefaultTitle   string      `json:"defaultTitle"`
	Comment        string      `json:"comment"`
	Schedule       []string    `json:"schedule"`
	Venue          []string    `json:"venue"`
	Attachment     Attachment  `json:"attachment"`
	CanEditRule    CanEditRule `json:"canEditRule"`
	StatusOnCreate Status      `json:"statusOnCreate"`
	Hidden         int         `json:"hidden"`
}

func (r *CreateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: `The "name" is invalid/missing`})
	}
	if validator.IsEmpty(r.DefaultTitle) {
		errs = append(errs, validator.ValidationError{Field: "defaultTitle", Message: `The "defaultTitle" is invalid/missing`})
	}
	if validator.IsEmpty(r.Comment) {
		errs = append(errs, validator.ValidationError{Field: "comment", Message: `The "comment" is invalid/missing`})
	}
	if !r.CanEditRule.Valid() {
		errs = append(errs, validator.ValidationError{Field: "canEditRule", Message: `The "canEditRule" is invalid/missing`})
	}
	if !r.StatusOnCreate.Valid() {
		errs = append(errs, validator.ValidationError{Field: "statusOnCreate", Message: `The "statusOnCreate" is invalid/missing`})
	}
	if r.Hidden != 0 && r.Hidden != 1 {
		errs = append(errs, validator.ValidationError{Field: "hidden", Message: `The "hidden" should be 0 or 1`})
	}
	for name, f := range r.Attachment {
		if validator.IsEmpty(f.Type) {
			errs = append(errs, validator.ValidationError{Field: "attachment." + name, Message: "type is required"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Template builds the stored definition from the request.
func (r *CreateTemplateRequest) Template() *Template {
	attachment := r.Attachment
	if attachment == nil {
		attachment = Attachment{}
	}
	return &Template{
		Name:           r.Name,
		DefaultTitle:   r.DefaultTitle,
		Comment:        r.Comment,
		Schedule:       nonNil(r.Schedule),
		Venue:          nonNil(r.Venue),
		Attachment:     attachment,
		CanEditRule:    r.CanEditRule,
		StatusOnCreate: r.StatusOnCreate,
		Hidden:         r.Hidden,
	}
}

// UpdateTemplateRequest replaces the definition of the template named in the path.
type UpdateTemplateRequest struct {
	CreateTemplateRequest
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
