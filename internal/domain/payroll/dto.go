package payroll

import (
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

// Formats accepted for a report download.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// BuildReportRequest selects an office and an optional cycle, both ends YYYY-MM-DD.
type BuildReportRequest struct {
	OfficeID   string `json:"officeId"`
	CycleStart string `json:"start,omitempty"`
	CycleEnd   string `json:"end,omitempty"`
	Format     string `json:"format,omitempty"`
}

func (r *BuildReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "officeId", Message: "officeId is required"})
	}
	start, startOK := validator.IsValidDate(r.CycleStart)
	if r.CycleStart != "" && !startOK {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.CycleEnd)
	if r.CycleEnd != "" && !endOK {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && start.After(end) {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must not be after end"})
	}
	if startOK && endOK && end.Sub(start).Hours() > 62*24 {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "a cycle cannot be longer than two months"})
	}
	if r.Format != "" && r.Format != FormatXLSX && r.Format != FormatCSV {
		errs = append(errs, validator.ValidationError{Field: "format", Message: "format must be xlsx or csv"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SendReportRequest builds a report and mails it to To.
type SendReportRequest struct {
	BuildReportRequest
	To []string `json:"to"`
}

func (r *SendReportRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := r.BuildReportRequest.Validate(); err != nil {
		errs, _ = err.(validator.ValidationErrors)
	}
	for _, addr := range r.To {
		if !validator.IsValidEmail(addr) {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must contain valid email addresses"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
