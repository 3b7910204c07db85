package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

// editable loads an activity the requester may edit. Support requests that are not
// assigned to the activity locate it through officeName.
func (s *ActivityServiceImpl) editable(ctx context.Context, activityID string, requester activity.Requester, officeName string) (*activity.Activity, *office.Office, error) {
	index, err := s.activities.GetProfileActivity(ctx, requester.PhoneNumber, activityID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get profile activity: %w", err)
	}

	var officeID string
	switch {
	case index != nil && (index.CanEdit || requester.IsSupportRequest):
		officeID = index.OfficeID
	case index != nil:
		return nil, nil, apperror.Forbidden("You cannot edit the activity '%s'", activityID)
	case requester.IsSupportRequest && officeName != "":
		o, err := s.offices.GetByName(ctx, officeName)
		if errors.Is(err, office.ErrOfficeNotFound) {
			return nil, nil, apperror.Forbidden("No office found with the name: '%s'", officeName)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get office: %w", err)
		}
		officeID = o.ID
	default:
		return nil, nil, apperror.NotFound("No activity found with the id: '%s'", activityID)
	}

	act, err := s.activities.GetActivity(ctx, officeID, activityID)
	if errors.Is(err, activity.ErrActivityNotFound) {
		return nil, nil, apperror.NotFound("No activity found with the id: '%s'", activityID)
	}
	if err != nil {
		return nil, nil, err
	}

	o, err := s.offices.GetByID(ctx, officeID)
	if err != nil && !errors.Is(err, office.ErrOfficeNotFound) {
		return nil, nil, fmt.Errorf("failed to get office: %w", err)
	}
	return act, o, nil
}

func (s *ActivityServiceImpl) update(ctx context.Context, req activity.SingleRequest, requester activity.Requester) (*activity.CreateActivityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	act, o, err := s.editable(ctx, req.ActivityID, requester, req.Office)
	if err != nil {
		return nil, err
	}
	if act.Template != req.Template {
		return nil, apperror.BadRequest("The activity '%s' is of the template '%s'", act.ID, act.Template)
	}

	t, err := s.templates.GetByName(ctx, act.Template)
	if errors.Is(err, template.ErrTemplateNotFound) {
		return nil, apperror.BadRequest("No template found with the name: '%s'", act.Template)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	// Validate the new values against the template
	schedule, err := activity.ValidateSchedules(req.Schedule, t.Schedule)
	if err != nil {
		return nil, err
	}
	venue, err := activity.ValidateVenues(req.Venue, t.Venue)
	if err != nil {
		return nil, err
	}
	checks, err := activity.ValidateAttachment(t.Descriptors(), req.Attachment, act.Template)
	if err != nil {
		return nil, err
	}
	unchanged := func(c activity.UniqueCheck) bool {
		return act.Attachment[c.Field].Value == c.Value
	}
	if err := s.checkReferences(ctx, act.OfficeID, checks, unchanged); err != nil {
		return nil, err
	}

	assignees, err := s.activities.ListAssignees(ctx, act.OfficeID, act.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	phones := make([]string, len(assignees))
	for i, a := range assignees {
		phones[i] = a.PhoneNumber
	}
	profiles, err := lookupAll(ctx, phones, s.activities.GetProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignee profiles: %w", err)
	}

	now := s.config.Now()
	addendumID := s.config.NewID()
	act.Schedule = schedule
	act.Venue = venue
	act.Attachment = req.Attachment
	act.ActivityName = activity.Name(act.Template, req.Attachment, requester)
	act.Timestamp = now.UnixMilli()
	act.AddendumDocRef = activity.AddendumPath(act.OfficeID, addendumID)

	w := s.activities.NewWriter()
	w.SetActivity(act)
	addendum := newAddendum(act, addendumID, requester, now.In(s.location(o)), activity.ActionUpdate, phones, req.Geopoint, req.Timestamp)
	w.AddAddendum(act.OfficeID, addendum)
	for i, a := range assignees {
		w.SetProfileActivity(a.PhoneNumber, &activity.ProfileActivity{
			ActivityID: act.ID,
			OfficeID:   act.OfficeID,
			Office:     act.Office,
			CanEdit:    a.CanEdit,
			Status:     act.Status,
			Timestamp:  act.Timestamp,
		})
		if profiles[i].SignedUp() {
			w.AddUpdate(profiles[i].UID, addendum)
		}
	}

	switch act.Template {
	case template.NameOffice:
		w.SetOffice(&office.Office{
			ID:         act.OfficeID,
			Name:       act.Office,
			Status:     act.Status,
			Attachment: act.Attachment,
			Timestamp:  act.Timestamp,
		})
	case template.NameEmployee:
		if phone := act.Attachment.String("Employee Contact"); phone != "" {
			values := act.Attachment.Values()
			if o != nil {
				if e, ok := o.EmployeesData[phone]; ok && e.CreateTime != 0 {
					values["createTime"] = e.CreateTime
				}
			}
			if _, ok := values["createTime"]; !ok {
				values["createTime"] = act.Timestamp
			}
			w.MergeEmployee(act.OfficeID, phone, values)
		}
	}

	if w.Len() > docstore.MaxBatchSize {
		return nil, apperror.BadRequest("Too many assignees. The activity '%s' cannot be updated with %d document writes", act.ID, w.Len())
	}
	if err := w.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	slog.Info("Activity: updated", "activity_id", act.ID, "template", act.Template, "office_id", act.OfficeID)
	return &activity.CreateActivityResponse{ActivityID: act.ID, Status: string(act.Status)}, nil
}

// Unassign implements activity.Service.
func (s *ActivityServiceImpl) Unassign(ctx context.Context, req activity.UnassignRequest, requester activity.Requester) (*activity.CreateActivityResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	act, o, err := s.editable(ctx, req.ActivityID, requester, "")
	if err != nil {
		return nil, err
	}

	assignees, err := s.activities.ListAssignees(ctx, act.OfficeID, act.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	current := make(map[string]bool, len(assignees))
	for _, a := range assignees {
		current[a.PhoneNumber] = true
	}

	var removed []string
	for _, phone := range req.Remove {
		if !current[phone] {
			return nil, apperror.BadRequest("%s is not an assignee of this activity", phone)
		}
		if !slices.Contains(removed, phone) {
			removed = append(removed, phone)
		}
	}
	var remaining []string
	for _, a := range assignees {
		if !slices.Contains(removed, a.PhoneNumber) {
			remaining = append(remaining, a.PhoneNumber)
		}
	}
	if len(remaining) == 0 {
		return nil, apperror.BadRequest("Cannot remove the last assignee of an activity")
	}

	profiles, err := lookupAll(ctx, remaining, s.activities.GetProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignee profiles: %w", err)
	}

	now := s.config.Now()
	addendumID := s.config.NewID()
	act.Timestamp = now.UnixMilli()
	act.AddendumDocRef = activity.AddendumPath(act.OfficeID, addendumID)

	w := s.activities.NewWriter()
	w.SetActivity(act)
	for _, phone := range removed {
		w.DeleteAssignee(act.OfficeID, act.ID, phone)
		w.DeleteProfileActivity(phone, act.ID)
	}
	addendum := newAddendum(act, addendumID, requester, now.In(s.location(o)), activity.ActionRemove, remaining, req.Geopoint, req.Timestamp)
	addendum.Removed = removed
	w.AddAddendum(act.OfficeID, addendum)
	for _, profile := range profiles {
		if profile.SignedUp() {
			w.AddUpdate(profile.UID, addendum)
		}
	}

	if err := w.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to unassign: %w", err)
	}
	slog.Info("Activity: assignees removed", "activity_id", act.ID, "removed", len(removed))
	return &activity.CreateActivityResponse{ActivityID: act.ID, Status: string(act.Status)}, nil
}
