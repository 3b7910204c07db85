package activity

import (
	"context"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
)

// Repository reads the documents the activity engine checks a request against.
// Lookups that find nothing return nil without an error.
type Repository interface {
	FindSubscription(ctx context.Context, phone, officeName, templateName string) (*Subscription, error)
	// FindByAttachment returns an activity of templateName in the office whose attachment
	// field holds value.
	FindByAttachment(ctx context.Context, officeID, templateName, field string, value any) (*Activity, error)
	GetProfile(ctx context.Context, phone string) (*Profile, error)
	GetProfileActivity(ctx context.Context, phone, activityID string) (*ProfileActivity, error)
	// GetActivity returns ErrActivityNotFound when the activity does not exist.
	GetActivity(ctx context.Context, officeID, activityID string) (*Activity, error)
	ListAssignees(ctx context.Context, officeID, activityID string) ([]Assignee, error)
	// LastLeaveAddendum returns the newest leave addendum of phone for leaveType in year.
	LastLeaveAddendum(ctx context.Context, officeID, phone, leaveType string, year int) (*Addendum, error)

	NewWriter() Writer
}

// Writer stages the documents of one activity operation and commits them as a single batch.
type Writer interface {
	SetActivity(a *Activity)
	SetAssignee(officeID, activityID string, a Assignee)
	DeleteAssignee(officeID, activityID, phone string)
	AddAddendum(officeID string, a *Addendum)
	// AddUpdate mirrors an addendum into the update feed of an auth identity.
	AddUpdate(uid string, a *Addendum)
	SetProfileActivity(phone string, p *ProfileActivity)
	DeleteProfileActivity(phone, activityID string)
	SetSubscription(phone string, s *Subscription)
	SetOffice(o *office.Office)
	MergeEmployee(officeID, phone string, e map[string]any)
	MergePayroll(init *payroll.Init)

	Len() int
	Commit(ctx context.Context) error
}
