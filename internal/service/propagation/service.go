package propagation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

// Config bounds every page to PageSize documents and waits PageDelay between pages.
type Config struct {
	PageSize  int
	PageDelay time.Duration
}

type PropagationServiceImpl struct {
	repo      propagation.Repository
	templates template.Repository
	config    Config
	now       func() time.Time
}

func NewPropagationService(repo propagation.Repository, templates template.Repository, config Config) propagation.Service {
	if config.PageSize <= 0 || config.PageSize > docstore.MaxBatchSize {
		config.PageSize = docstore.MaxBatchSize
	}
	return &PropagationServiceImpl{
		repo:      repo,
		templates: templates,
		config:    config,
		now:       time.Now,
	}
}

type pageFunc func(ctx context.Context, after *docstore.Cursor) (*propagation.Page, error)

// pass is one paged walk over the documents holding a copy of a template.
type pass struct {
	name   string
	result *propagation.Result
	run    pageFunc
}

// PropagateTemplate implements propagation.Service.
func (s *PropagationServiceImpl) PropagateTemplate(ctx context.Context, templateName string) (*propagation.TemplateResult, error) {
	t, err := s.templates.GetByName(ctx, templateName)
	if errors.Is(err, template.ErrTemplateNotFound) {
		return nil, apperror.NotFound("No template found with the name: '%s'", templateName)
	}
	if err != nil {
		return nil, err
	}

	timestamp := s.now().UnixMilli()
	size := s.config.PageSize
	result := &propagation.TemplateResult{Template: t.Name}

	passes := []pass{
		{"subscription activities", &result.SubscriptionActivities, func(ctx context.Context, after *docstore.Cursor) (*propagation.Page, error) {
			return s.repo.RefreshSubscriptionActivities(ctx, t.Name, after, size, timestamp)
		}},
		{"subscriptions", &result.Subscriptions, func(ctx context.Context, after *docstore.Cursor) (*propagation.Page, error) {
			return s.repo.SnapshotSubscriptions(ctx, t, after, size, timestamp)
		}},
	}
	// Check-ins are never edited after creation
	if t.Name != template.NameCheckIn {
		passes = append(passes, pass{"activities", &result.Activities, func(ctx context.Context, after *docstore.Cursor) (*propagation.Page, error) {
			return s.repo.RefreshActivities(ctx, t, after, size)
		}})
	}

	for _, p := range passes {
		if err := s.paginate(ctx, p.run, p.result); err != nil {
			return result, fmt.Errorf("failed to propagate %s to %s: %w", t.Name, p.name, err)
		}
	}

	slog.Info("Propagation: template propagated",
		"template", t.Name,
		"subscription_activities", result.SubscriptionActivities.Documents,
		"subscriptions", result.Subscriptions.Documents,
		"activities", result.Activities.Documents,
	)
	return result, nil
}

// PurgeAddendum implements propagation.Service.
func (s *PropagationServiceImpl) PurgeAddendum(ctx context.Context, uid string, before time.Time) (*propagation.Result, error) {
	result := &propagation.Result{}
	err := s.paginate(ctx, func(ctx context.Context, _ *docstore.Cursor) (*propagation.Page, error) {
		return s.repo.PurgeUpdates(ctx, uid, before, s.config.PageSize)
	}, result)
	if err != nil {
		return result, fmt.Errorf("failed to purge updates of %s: %w", uid, err)
	}

	slog.Info("Propagation: updates purged", "uid", uid, "before", before, "deleted", result.Documents)
	return result, nil
}

// paginate runs pages until one comes back empty, pausing between pages. A failed page
// ends the run; pages already committed stay.
func (s *PropagationServiceImpl) paginate(ctx context.Context, run pageFunc, result *propagation.Result) error {
	var after *docstore.Cursor
	for {
		page, err := run(ctx, after)
		if err != nil {
			return err
		}
		if page.Documents == 0 {
			return nil
		}
		result.Page(page.Documents)
		after = page.Next

		if err := s.pause(ctx); err != nil {
			return err
		}
	}
}

func (s *PropagationServiceImpl) pause(ctx context.Context) error {
	if s.config.PageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.config.PageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
