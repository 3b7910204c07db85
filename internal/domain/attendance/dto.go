package attendance

import (
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

type RollupRequest struct {
	OfficeID string `json:"officeId"`
	// Date is the day to roll up, YYYY-MM-DD. Empty means yesterday.
	Date string `json:"date,omitempty"`
}

func (r *RollupRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficeID) {
		errs = append(errs, validator.ValidationError{Field: "officeId", Message: "officeId is required"})
	}
	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Reference is the instant whose previous day is rolled up.
func (r *RollupRequest) Reference(now time.Time) time.Time {
	if d, ok := validator.IsValidDate(r.Date); ok {
		return d.AddDate(0, 0, 1).Add(12 * time.Hour)
	}
	return now
}
