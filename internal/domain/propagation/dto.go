package propagation

import (
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

type PurgeRequest struct {
	UID string `json:"-"`
	// Before is RFC 3339; addendum entries older than it are deleted.
	Before string `json:"before"`
}

func (r *PurgeRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UID) {
		errs = append(errs, validator.ValidationError{Field: "uid", Message: "uid is required"})
	}
	before, err := time.Parse(time.RFC3339, r.Before)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "before", Message: "before must be an RFC 3339 timestamp"})
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return before, nil
}
