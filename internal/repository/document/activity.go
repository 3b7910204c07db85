package document

import (
	"context"
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type activityRepositoryImpl struct {
	store docstore.Store
}

func NewActivityRepository(store docstore.Store) activity.Repository {
	return &activityRepositoryImpl{store: store}
}

// FindSubscription implements activity.Repository.
func (r *activityRepositoryImpl) FindSubscription(ctx context.Context, phone, officeName, templateName string) (*activity.Subscription, error) {
	q := docstore.From(docstore.CollectionPath(Profiles, phone, Subscriptions)).
		Where("office", docstore.OpEqual, officeName).
		Where("template", docstore.OpEqual, templateName)

	snap, err := docstore.First(ctx, r.store, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	sub, err := decode[activity.Subscription](snap)
	if err != nil {
		return nil, err
	}
	sub.ID = snap.Ref.ID
	return sub, nil
}

// FindByAttachment implements activity.Repository.
func (r *activityRepositoryImpl) FindByAttachment(ctx context.Context, officeID, templateName, field string, value any) (*activity.Activity, error) {
	q := docstore.From(OfficeCollection(officeID, Activities)).
		Where("template", docstore.OpEqual, templateName).
		Where(attachmentValue(field), docstore.OpEqual, value)

	snap, err := docstore.First(ctx, r.store, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s activity by %s: %w", templateName, field, err)
	}
	if snap == nil {
		return nil, nil
	}
	a, err := decode[activity.Activity](snap)
	if err != nil {
		return nil, err
	}
	a.ID = snap.Ref.ID
	return a, nil
}

// GetProfile implements activity.Repository.
func (r *activityRepositoryImpl) GetProfile(ctx context.Context, phone string) (*activity.Profile, error) {
	snap, err := r.store.Get(ctx, ProfileRef(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p, err := decode[activity.Profile](snap)
	if err != nil || p == nil {
		return nil, err
	}
	p.PhoneNumber = phone
	return p, nil
}

// GetProfileActivity implements activity.Repository.
func (r *activityRepositoryImpl) GetProfileActivity(ctx context.Context, phone, activityID string) (*activity.ProfileActivity, error) {
	snap, err := r.store.Get(ctx, ProfileActivityRef(phone, activityID))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile activity: %w", err)
	}
	p, err := decode[activity.ProfileActivity](snap)
	if err != nil || p == nil {
		return nil, err
	}
	p.ActivityID = activityID
	return p, nil
}

// GetActivity implements activity.Repository.
func (r *activityRepositoryImpl) GetActivity(ctx context.Context, officeID, activityID string) (*activity.Activity, error) {
	snap, err := r.store.Get(ctx, ActivityRef(officeID, activityID))
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	a, err := decode[activity.Activity](snap)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, activity.ErrActivityNotFound
	}
	a.ID = activityID
	return a, nil
}

// ListAssignees implements activity.Repository.
func (r *activityRepositoryImpl) ListAssignees(ctx context.Context, officeID, activityID string) ([]activity.Assignee, error) {
	q := docstore.From(ActivityRef(officeID, activityID).Path() + "/" + Assignees)
	snaps, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	out := make([]activity.Assignee, 0, len(snaps))
	for _, snap := range snaps {
		a, err := decode[activity.Assignee](snap)
		if err != nil {
			return nil, err
		}
		a.PhoneNumber = snap.Ref.ID
		out = append(out, *a)
	}
	return out, nil
}

// LastLeaveAddendum implements activity.Repository.
func (r *activityRepositoryImpl) LastLeaveAddendum(ctx context.Context, officeID, phone, leaveType string, year int) (*activity.Addendum, error) {
	q := docstore.From(OfficeCollection(officeID, Addendum)).
		Where("template", docstore.OpEqual, template.NameLeave).
		Where("user", docstore.OpEqual, phone).
		Where("year", docstore.OpEqual, year).
		Where("activityData.attachment.Leave Type.value", docstore.OpEqual, leaveType).
		OrderBy("timestamp", docstore.Desc)

	snap, err := docstore.First(ctx, r.store, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave addendum: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	a, err := decode[activity.Addendum](snap)
	if err != nil {
		return nil, err
	}
	a.ID = snap.Ref.ID
	return a, nil
}

// NewWriter implements activity.Repository.
func (r *activityRepositoryImpl) NewWriter() activity.Writer {
	return &activityWriter{store: r.store, batch: docstore.NewBatch()}
}

// activityWriter stages into one batch. The first encoding error is kept and returned by Commit.
type activityWriter struct {
	store docstore.Store
	batch *docstore.Batch
	err   error
}

func (w *activityWriter) set(ref docstore.Ref, v any) {
	data, err := encode(v)
	if err != nil {
		w.fail(ref, err)
		return
	}
	w.batch.Set(ref, data)
}

func (w *activityWriter) merge(ref docstore.Ref, v any) {
	data, err := encode(v)
	if err != nil {
		w.fail(ref, err)
		return
	}
	w.batch.Merge(ref, data)
}

func (w *activityWriter) fail(ref docstore.Ref, err error) {
	if w.err == nil {
		w.err = fmt.Errorf("failed to stage %s: %w", ref.Path(), err)
	}
}

func (w *activityWriter) SetActivity(a *activity.Activity) {
	w.set(ActivityRef(a.OfficeID, a.ID), a)
}

func (w *activityWriter) SetAssignee(officeID, activityID string, a activity.Assignee) {
	w.set(AssigneeRef(officeID, activityID, a.PhoneNumber), a)
}

func (w *activityWriter) DeleteAssignee(officeID, activityID, phone string) {
	w.batch.Delete(AssigneeRef(officeID, activityID, phone))
}

func (w *activityWriter) AddAddendum(officeID string, a *activity.Addendum) {
	w.set(docstore.NewRef(OfficeCollection(officeID, Addendum), a.ID), a)
}

func (w *activityWriter) AddUpdate(uid string, a *activity.Addendum) {
	w.set(UpdateRef(uid, a.ID), a)
}

func (w *activityWriter) SetProfileActivity(phone string, p *activity.ProfileActivity) {
	w.set(ProfileActivityRef(phone, p.ActivityID), p)
}

func (w *activityWriter) DeleteProfileActivity(phone, activityID string) {
	w.batch.Delete(ProfileActivityRef(phone, activityID))
}

func (w *activityWriter) SetSubscription(phone string, s *activity.Subscription) {
	w.set(SubscriptionRef(phone, s.ID), s)
}

// SetOffice merges the office root document so an existing roster survives.
func (w *activityWriter) SetOffice(o *office.Office) {
	ref := OfficeRef(o.ID)
	data, err := encode(o)
	if err != nil {
		w.fail(ref, err)
		return
	}
	if o.EmployeesData == nil {
		delete(data, "employeesData")
	}
	w.batch.Merge(ref, data)
}

func (w *activityWriter) MergeEmployee(officeID, phone string, e map[string]any) {
	w.merge(OfficeRef(officeID), docstore.Data{"employeesData": map[string]any{phone: e}})
}

func (w *activityWriter) MergePayroll(init *payroll.Init) {
	w.merge(docstore.NewRef(Inits, payroll.InitID(init.OfficeID, init.Year, init.Month)), init)
}

func (w *activityWriter) Len() int {
	return w.batch.Len()
}

func (w *activityWriter) Commit(ctx context.Context) error {
	if w.err != nil {
		return w.err
	}
	if err := w.store.Commit(ctx, w.batch); err != nil {
		return fmt.Errorf("failed to commit activity batch: %w", err)
	}
	return nil
}
