package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
)

type TemplateServiceImpl struct {
	repo  template.Repository
	queue propagation.Queue
	now   func() time.Time
}

// NewTemplateService returns a template.Service. Updates are handed to queue for
// propagation; a nil queue disables it.
func NewTemplateService(repo template.Repository, queue propagation.Queue) template.Service {
	return &TemplateServiceImpl{repo: repo, queue: queue, now: time.Now}
}

func reserved(name string) error {
	if name == template.NamePlan {
		return apperror.Forbidden(`You cannot update the template "%s".`, template.NamePlan)
	}
	return nil
}

// Create implements template.Service.
func (s *TemplateServiceImpl) Create(ctx context.Context, req template.CreateTemplateRequest) (*template.Template, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := reserved(req.Name); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByName(ctx, req.Name)
	if err == nil {
		return nil, apperror.Conflict(`A template with the name: "%s" already exists.`, req.Name)
	}
	if !errors.Is(err, template.ErrTemplateNotFound) {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	t := req.Template()
	t.Timestamp = s.now().UnixMilli()
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	slog.Info("Template: created", "name", t.Name, "id", t.ID)
	return t, nil
}

// Update implements template.Service.
func (s *TemplateServiceImpl) Update(ctx context.Context, name string, req template.UpdateTemplateRequest) (*template.Template, error) {
	req.Name = name
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := reserved(name); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	t := req.Template()
	t.ID = existing.ID
	t.Timestamp = s.now().UnixMilli()
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	if s.queue != nil && !s.queue.Enqueue(name) {
		slog.Warn("Template: propagation not queued", "name", name)
	}
	slog.Info("Template: updated", "name", name, "id", t.ID)
	return t, nil
}

// Get implements template.Service.
func (s *TemplateServiceImpl) Get(ctx context.Context, name string) (*template.Template, error) {
	t, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, template.ErrTemplateNotFound) {
		return nil, apperror.NotFound("No template found with the name: '%s'", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}
