package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
)

// pipeline is the state of one create request, filled in stage by stage.
type pipeline struct {
	req        activity.CreateActivityRequest
	requester  activity.Requester
	now        time.Time
	activityID string

	office       *office.Office
	officeID     string
	loc          *time.Location
	subscription *activity.Subscription
	template     *template.Template
	target       *template.Template

	scheduleNames    []string
	venueDescriptors []string
	descriptors      []template.FieldDescriptor
	canEditRule      template.CanEditRule
	status           template.Status
	hidden           int
	include          []string

	assignees   []string
	assigneeSet map[string]bool
	schedule    []activity.Schedule
	venue       []activity.Venue
	checks      *activity.AttachmentResult

	leave            *leaveBalance
	distanceAccurate *bool
	payroll          []*payroll.Init

	canEdit  map[string]bool
	profiles map[string]*activity.Profile
}

func (p *pipeline) addAssignee(phone string) {
	if phone == "" {
		return
	}
	if p.assigneeSet == nil {
		p.assigneeSet = make(map[string]bool)
	}
	if p.assigneeSet[phone] {
		return
	}
	p.assigneeSet[phone] = true
	p.assignees = append(p.assignees, phone)
}

func (p *pipeline) cancel() {
	p.status = template.StatusCancelled
}

type stage struct {
	name string
	run  func(ctx context.Context, p *pipeline) error
}

// stages lists the create pipeline in order. The first failing stage aborts the request
// before anything is written.
func (s *ActivityServiceImpl) stages() []stage {
	return []stage{
		{"validateRequest", s.validateRequest},
		{"fetchDocs", s.fetchDocs},
		{"resolveOffice", s.resolveOffice},
		{"resolveSubscription", s.resolveSubscription},
		{"verifyUniqueness", s.verifyUniqueness},
		{"validateScheduleAndVenue", s.validateScheduleAndVenue},
		{"validateAttachment", s.validateAttachment},
		{"resolveReferences", s.resolveReferences},
		{"computeLeaveBalance", s.computeLeaveBalance},
		{"checkDistance", s.checkDistance},
		{"markPayroll", s.markPayroll},
		{"resolveAssignees", s.resolveAssignees},
		{"commit", s.commit},
	}
}

// lookupAll runs fn for every item concurrently and returns the results in item order.
func lookupAll[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(gctx, item)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ActivityServiceImpl) validateRequest(ctx context.Context, p *pipeline) error {
	return p.req.Validate()
}

func (s *ActivityServiceImpl) fetchDocs(ctx context.Context, p *pipeline) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sub, err := s.activities.FindSubscription(gctx, p.requester.PhoneNumber, p.req.Office, p.req.Template)
		p.subscription = sub
		return err
	})
	g.Go(func() error {
		o, err := s.offices.GetByName(gctx, p.req.Office)
		if errors.Is(err, office.ErrOfficeNotFound) {
			return nil
		}
		p.office = o
		return err
	})
	if p.requester.IsSupportRequest {
		g.Go(func() error {
			t, err := s.templates.GetByName(gctx, p.req.Template)
			if errors.Is(err, template.ErrTemplateNotFound) {
				return nil
			}
			p.template = t
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch documents: %w", err)
	}
	return nil
}

func (s *ActivityServiceImpl) resolveOffice(ctx context.Context, p *pipeline) error {
	isOffice := p.req.Template == template.NameOffice

	switch {
	case p.office == nil && !isOffice:
		return apperror.Forbidden("No office found with the name: '%s'", p.req.Office)
	case p.office != nil && isOffice:
		return apperror.Conflict("The office '%s' already exists", p.req.Office)
	case p.office != nil && p.office.Cancelled():
		return apperror.Forbidden("The office status is 'CANCELLED'. Cannot create an activity")
	}

	if isOffice {
		// A new office is identified by the id of the activity that creates it.
		p.officeID = p.activityID
		p.loc = s.location(&office.Office{Attachment: p.req.Attachment})
		return nil
	}
	p.officeID = p.office.ID
	p.loc = s.location(p.office)
	return nil
}

func (s *ActivityServiceImpl) resolveSubscription(ctx context.Context, p *pipeline) error {
	if p.requester.IsSupportRequest && p.req.CanEditRule != "" {
		t := p.template
		if t == nil {
			return apperror.BadRequest("No template found with the name: '%s'", p.req.Template)
		}
		p.scheduleNames = t.Schedule
		p.venueDescriptors = t.Venue
		p.descriptors = t.Descriptors()
		p.canEditRule = p.req.CanEditRule
		p.status = t.StatusOnCreate
		p.hidden = t.Hidden
	} else {
		sub := p.subscription
		if sub == nil {
			return apperror.Forbidden("No subscription found for the template: '%s' with the office '%s'", p.req.Template, p.req.Office)
		}
		if sub.Status == template.StatusCancelled {
			return apperror.Forbidden("Your subscription to the template '%s' is 'CANCELLED'.Cannot create an activity", p.req.Template)
		}
		p.scheduleNames = sub.Schedule
		p.venueDescriptors = sub.Venue
		p.descriptors = template.DescriptorsOf(sub.Attachment)
		p.canEditRule = sub.CanEditRule
		if p.req.CanEditRule != "" {
			p.canEditRule = p.req.CanEditRule
		}
		p.status = sub.StatusOnCreate
		p.hidden = sub.Hidden
		p.include = sub.Include
	}
	if p.status == "" {
		p.status = template.StatusConfirmed
	}

	for _, phone := range p.req.Share {
		p.addAssignee(phone)
	}
	for _, phone := range p.include {
		p.addAssignee(phone)
	}
	if !p.requester.IsSupportRequest {
		p.addAssignee(p.requester.PhoneNumber)
	}
	return nil
}

func (s *ActivityServiceImpl) verifyUniqueness(ctx context.Context, p *pipeline) error {
	switch p.req.Template {
	case template.NameSubscription:
		subscriber := p.req.Attachment.String("Subscriber")
		target := p.req.Attachment.String("Template")
		if subscriber == "" || target == "" {
			return nil
		}
		existing, err := s.activities.FindSubscription(ctx, subscriber, p.req.Office, target)
		if err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if existing != nil {
			return apperror.Conflict("'%s' already has the subscription of '%s' for the '%s'.", subscriber, target, p.req.Office)
		}
	case template.NameAdmin:
		admin := p.req.Attachment.String("Admin")
		if admin == "" {
			return nil
		}
		existing, err := s.activities.FindByAttachment(ctx, p.officeID, template.NameAdmin, "Admin", admin)
		if err != nil {
			return fmt.Errorf("failed to check admin: %w", err)
		}
		if existing != nil && existing.Status != template.StatusCancelled {
			return apperror.Conflict("'%s' is already an 'Admin' of '%s'", admin, p.req.Office)
		}
	}
	return nil
}

func (s *ActivityServiceImpl) validateScheduleAndVenue(ctx context.Context, p *pipeline) error {
	schedule, err := activity.ValidateSchedules(p.req.Schedule, p.scheduleNames)
	if err != nil {
		return err
	}
	venue, err := activity.ValidateVenues(p.req.Venue, p.venueDescriptors)
	if err != nil {
		return err
	}
	p.schedule, p.venue = schedule, venue
	return nil
}

func (s *ActivityServiceImpl) validateAttachment(ctx context.Context, p *pipeline) error {
	checks, err := activity.ValidateAttachment(p.descriptors, p.req.Attachment, p.req.Template)
	if err != nil {
		return err
	}
	p.checks = checks

	if p.req.Template == template.NameSubscription {
		name := p.req.Attachment.String("Template")
		target, err := s.templates.GetByName(ctx, name)
		if errors.Is(err, template.ErrTemplateNotFound) {
			return apperror.BadRequest("%s doesn't exist", name)
		}
		if err != nil {
			return fmt.Errorf("failed to get template %s: %w", name, err)
		}
		p.target = target
	}

	for _, phone := range checks.PhoneNumbers {
		p.addAssignee(phone)
	}
	return nil
}

func (s *ActivityServiceImpl) resolveReferences(ctx context.Context, p *pipeline) error {
	return s.checkReferences(ctx, p.officeID, p.checks, nil)
}

// checkReferences runs the profile, must-exist and must-not-exist checks as three
// ordered batches. Lookups inside a batch run concurrently; the first violation in
// attachment order wins. Unique checks for which skip reports true are not run.
func (s *ActivityServiceImpl) checkReferences(ctx context.Context, officeID string, checks *activity.AttachmentResult, skip func(activity.UniqueCheck) bool) error {
	profiles, err := lookupAll(ctx, checks.ProfilesMustExist, s.activities.GetProfile)
	if err != nil {
		return fmt.Errorf("failed to look up profiles: %w", err)
	}
	for i, phone := range checks.ProfilesMustExist {
		if !profiles[i].SignedUp() {
			return apperror.BadRequest("The user %s has not signed up on Growthfile.", phone)
		}
	}

	existing, err := lookupAll(ctx, checks.MustExist, func(ctx context.Context, c activity.ReferenceCheck) (*activity.Activity, error) {
		return s.activities.FindByAttachment(ctx, officeID, c.Template, "Name", c.Value)
	})
	if err != nil {
		return fmt.Errorf("failed to look up references: %w", err)
	}
	for i, c := range checks.MustExist {
		if existing[i] == nil {
			return apperror.BadRequest("%s does not exist", c.Value)
		}
	}

	unique := make([]activity.UniqueCheck, 0, len(checks.MustNotExist))
	for _, c := range checks.MustNotExist {
		if skip == nil || !skip(c) {
			unique = append(unique, c)
		}
	}
	taken, err := lookupAll(ctx, unique, func(ctx context.Context, c activity.UniqueCheck) (*activity.Activity, error) {
		return s.activities.FindByAttachment(ctx, officeID, c.Template, c.Field, c.Value)
	})
	if err != nil {
		return fmt.Errorf("failed to look up unique values: %w", err)
	}
	for i, c := range unique {
		if taken[i] != nil && taken[i].Status != template.StatusCancelled {
			return apperror.BadRequest("The %s '%s' already is in use", c.Field, c.DisplayValue())
		}
	}
	return nil
}
