package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
)

// Leave reset policies applied when a leave request exceeds the remaining balance.
const (
	LeavePolicyRegrant = "regrant"
	LeavePolicyReject  = "reject"
)

// Config tunes the engine. DefaultTimezone applies to offices without a Timezone
// attachment. Now and NewID are replaced in tests.
type Config struct {
	DefaultTimezone  string
	LeaveResetPolicy string
	Now              func() time.Time
	NewID            func() string
}

type ActivityServiceImpl struct {
	activities activity.Repository
	offices    office.Repository
	templates  template.Repository
	payrolls   payroll.Repository
	config     Config
}

func NewActivityService(
	activities activity.Repository,
	offices office.Repository,
	templates template.Repository,
	payrolls payroll.Repository,
	config Config,
) activity.Service {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}
	if config.LeaveResetPolicy == "" {
		config.LeaveResetPolicy = LeavePolicyRegrant
	}
	return &ActivityServiceImpl{
		activities: activities,
		offices:    offices,
		templates:  templates,
		payrolls:   payrolls,
		config:     config,
	}
}

// Create implements activity.Service.
func (s *ActivityServiceImpl) Create(ctx context.Context, req activity.CreateActivityRequest, requester activity.Requester) (*activity.CreateActivityResponse, error) {
	p := &pipeline{
		req:        req,
		requester:  requester,
		now:        s.config.Now(),
		activityID: s.config.NewID(),
	}
	for _, st := range s.stages() {
		if err := st.run(ctx, p); err != nil {
			if !isClientError(err) {
				slog.Error("Activity: stage failed", "stage", st.name, "template", req.Template, "office", req.Office, "error", err)
			}
			return nil, err
		}
	}

	slog.Info("Activity: created",
		"activity_id", p.activityID,
		"template", req.Template,
		"office_id", p.officeID,
		"assignees", len(p.assignees),
		"status", p.status,
	)
	return &activity.CreateActivityResponse{ActivityID: p.activityID, Status: string(p.status)}, nil
}

// Dispatch implements activity.Service.
func (s *ActivityServiceImpl) Dispatch(ctx context.Context, req activity.SingleRequest, requester activity.Requester) (*activity.CreateActivityResponse, error) {
	if req.Template == template.NameOffice && !requester.IsSupportRequest {
		return nil, apperror.Forbidden("The template '%s' can only be used with support privileges", template.NameOffice)
	}
	if req.ActivityID == "" {
		return s.Create(ctx, req.CreateActivityRequest, requester)
	}
	return s.update(ctx, req, requester)
}

func isClientError(err error) bool {
	if _, ok := apperror.As(err); ok {
		return true
	}
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// location is the timezone of an office, or of a new office from its attachment.
func (s *ActivityServiceImpl) location(o *office.Office) *time.Location {
	if o == nil {
		o = &office.Office{}
	}
	return o.Location(s.config.DefaultTimezone)
}
