package activity

import (
	"context"
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
)

type roles struct {
	admin    bool
	employee bool
}

// canEditFor applies an edit rule to one assignee.
func canEditFor(rule template.CanEditRule, phone, creator string, include map[string]bool, r roles) bool {
	switch rule {
	case template.CanEditAll:
		return true
	case template.CanEditCreator:
		return phone == creator
	case template.CanEditFromInclude:
		return include[phone]
	case template.CanEditPeopleType:
		return r.admin || r.employee
	case template.CanEditAdmin:
		return r.admin
	case template.CanEditEmployee:
		return r.employee
	default:
		return false
	}
}

func needsRoles(rule template.CanEditRule) bool {
	return rule == template.CanEditPeopleType || rule == template.CanEditAdmin || rule == template.CanEditEmployee
}

func (s *ActivityServiceImpl) rolesOf(ctx context.Context, officeID, phone string) (roles, error) {
	admin, err := s.activities.FindByAttachment(ctx, officeID, template.NameAdmin, "Admin", phone)
	if err != nil {
		return roles{}, err
	}
	employee, err := s.activities.FindByAttachment(ctx, officeID, template.NameEmployee, "Employee Contact", phone)
	if err != nil {
		return roles{}, err
	}
	return roles{
		admin:    admin != nil && admin.Status != template.StatusCancelled,
		employee: employee != nil && employee.Status != template.StatusCancelled,
	}, nil
}

func (s *ActivityServiceImpl) resolveAssignees(ctx context.Context, p *pipeline) error {
	if len(p.assignees) == 0 {
		return apperror.BadRequest("Cannot create an activity without any assignees. Please add some assignees for this activity using the 'share' array in the request body.")
	}

	found := make([]roles, len(p.assignees))
	if needsRoles(p.canEditRule) {
		var err error
		found, err = lookupAll(ctx, p.assignees, func(ctx context.Context, phone string) (roles, error) {
			return s.rolesOf(ctx, p.officeID, phone)
		})
		if err != nil {
			return fmt.Errorf("failed to resolve assignee roles: %w", err)
		}
	}

	profiles, err := lookupAll(ctx, p.assignees, s.activities.GetProfile)
	if err != nil {
		return fmt.Errorf("failed to get assignee profiles: %w", err)
	}

	include := make(map[string]bool, len(p.include))
	for _, phone := range p.include {
		include[phone] = true
	}
	newAdmin := ""
	if p.req.Template == template.NameAdmin {
		newAdmin = p.req.Attachment.String("Admin")
	}

	p.canEdit = make(map[string]bool, len(p.assignees))
	p.profiles = make(map[string]*activity.Profile, len(p.assignees))
	for i, phone := range p.assignees {
		p.canEdit[phone] = phone == newAdmin || canEditFor(p.canEditRule, phone, p.requester.PhoneNumber, include, found[i])
		p.profiles[phone] = profiles[i]
	}
	return nil
}
