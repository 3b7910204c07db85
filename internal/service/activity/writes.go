package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

const dateStringLayout = "Mon Jan 02 2006"

func newAddendum(a *activity.Activity, id string, requester activity.Requester, local time.Time, action string, share []string, location *activity.Geopoint, deviceTimestamp int64) *activity.Addendum {
	return &activity.Addendum{
		ID:                  id,
		ActivityData:        *a,
		Date:                local.Day(),
		Month:               int(local.Month()),
		Year:                local.Year(),
		DateString:          local.Format(dateStringLayout),
		User:                requester.PhoneNumber,
		UserDisplayName:     requester.DisplayName,
		Share:               share,
		Action:              action,
		Template:            a.Template,
		Location:            location,
		Timestamp:           local.UnixMilli(),
		UserDeviceTimestamp: deviceTimestamp,
		ActivityID:          a.ID,
		ActivityName:        a.ActivityName,
		IsSupportRequest:    requester.IsSupportRequest,
	}
}

// commit stages every document of the new activity into one batch.
func (s *ActivityServiceImpl) commit(ctx context.Context, p *pipeline) error {
	addendumID := s.config.NewID()
	timestamp := p.now.UnixMilli()

	act := &activity.Activity{
		ID:             p.activityID,
		Template:       p.req.Template,
		Office:         p.req.Office,
		OfficeID:       p.officeID,
		ActivityName:   activity.Name(p.req.Template, p.req.Attachment, p.requester),
		Schedule:       p.schedule,
		Venue:          p.venue,
		Attachment:     p.req.Attachment,
		Status:         p.status,
		CanEditRule:    p.canEditRule,
		Creator:        p.requester.PhoneNumber,
		Hidden:         p.hidden,
		Timestamp:      timestamp,
		AddendumDocRef: activity.AddendumPath(p.officeID, addendumID),
	}

	w := s.activities.NewWriter()
	w.SetActivity(act)

	for _, phone := range p.assignees {
		addToInclude := !(p.req.Template == template.NameSubscription && phone == p.requester.PhoneNumber)
		w.SetAssignee(p.officeID, p.activityID, activity.Assignee{PhoneNumber: phone, CanEdit: p.canEdit[phone], AddToInclude: addToInclude})
		w.SetProfileActivity(phone, &activity.ProfileActivity{
			ActivityID: p.activityID,
			OfficeID:   p.officeID,
			Office:     p.req.Office,
			CanEdit:    p.canEdit[phone],
			Status:     p.status,
			Timestamp:  timestamp,
		})
	}

	addendum := newAddendum(act, addendumID, p.requester, p.now.In(p.loc), activity.ActionCreate, p.assignees, p.req.Geopoint, p.req.Timestamp)
	addendum.DistanceAccurate = p.distanceAccurate
	if p.leave != nil {
		addendum.AnnualLeavesEntitled = &p.leave.entitled
		addendum.TotalLeavesRemaining = &p.leave.remaining
		addendum.TotalLeavesTaken = &p.leave.taken
	}
	w.AddAddendum(p.officeID, addendum)
	for _, phone := range p.assignees {
		if profile := p.profiles[phone]; profile.SignedUp() {
			w.AddUpdate(profile.UID, addendum)
		}
	}

	switch p.req.Template {
	case template.NameOffice:
		w.SetOffice(&office.Office{
			ID:         p.officeID,
			Name:       p.req.Office,
			Status:     p.status,
			Attachment: p.req.Attachment,
			Timestamp:  timestamp,
		})
	case template.NameEmployee:
		if phone := p.req.Attachment.String("Employee Contact"); phone != "" {
			values := p.req.Attachment.Values()
			values["createTime"] = timestamp
			w.MergeEmployee(p.officeID, phone, values)
		}
	case template.NameSubscription:
		if p.target == nil {
			break
		}
		w.SetSubscription(p.req.Attachment.String("Subscriber"), p.subscriptionDoc(timestamp))
	}

	for _, init := range p.payroll {
		w.MergePayroll(init)
	}

	if w.Len() > docstore.MaxBatchSize {
		return apperror.BadRequest("Too many assignees. An activity cannot be created with %d document writes", w.Len())
	}
	if err := w.Commit(ctx); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// subscriptionDoc snapshots the target template for the new subscriber.
func (p *pipeline) subscriptionDoc(timestamp int64) *activity.Subscription {
	subscriber := p.req.Attachment.String("Subscriber")
	include := make([]string, 0, len(p.assignees))
	for _, phone := range p.assignees {
		if phone != subscriber {
			include = append(include, phone)
		}
	}
	t := p.target
	return &activity.Subscription{
		ID:             p.activityID,
		Office:         p.req.Office,
		OfficeID:       p.officeID,
		Template:       t.Name,
		Include:        include,
		Schedule:       t.Schedule,
		Venue:          t.Venue,
		Attachment:     t.Attachment,
		CanEditRule:    t.CanEditRule,
		StatusOnCreate: t.StatusOnCreate,
		Status:         p.status,
		Hidden:         t.Hidden,
		Timestamp:      timestamp,
	}
}
