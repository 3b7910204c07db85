package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if rejection, ok := apperror.As(err); ok {
		switch {
		case errors.Is(rejection, apperror.ErrForbidden):
			Forbidden(w, rejection.Message)
		case errors.Is(rejection, apperror.ErrNotFound):
			NotFound(w, rejection.Message)
		case errors.Is(rejection, apperror.ErrConflict):
			Conflict(w, rejection.Message)
		case errors.Is(rejection, apperror.ErrMethodNotAllowed):
			MethodNotAllowed(w, rejection.Message)
		default:
			BadRequest(w, rejection.Message, nil)
		}
		return
	}

	switch {
	case errors.Is(err, office.ErrOfficeNotFound):
		NotFound(w, "Office not found")
	case errors.Is(err, template.ErrTemplateNotFound):
		NotFound(w, "Template not found")
	case errors.Is(err, attendance.ErrOfficeCancelled):
		Conflict(w, "Office is cancelled")
	case errors.Is(err, attendance.ErrNoRoster):
		BadRequest(w, "Office has no employees", nil)
	case errors.Is(err, payroll.ErrEmptyReport):
		BadRequest(w, "Report has no employees", nil)
	case errors.Is(err, payroll.ErrNoRecipients):
		BadRequest(w, "Report has no recipients", nil)
	case errors.Is(err, propagation.ErrQueueStopped):
		ServiceUnavailable(w, "Propagation is not accepting work")

	default:
		slog.Error("Request failed", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
