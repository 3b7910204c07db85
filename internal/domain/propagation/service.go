package propagation

import (
	"context"
	"time"
)

type Service interface {
	// PropagateTemplate pushes the current definition of a template to its subscriptions
	// and activities.
	PropagateTemplate(ctx context.Context, templateName string) (*TemplateResult, error)
	// PurgeAddendum deletes the update feed entries of uid older than before.
	PurgeAddendum(ctx context.Context, uid string, before time.Time) (*Result, error)
}

// Queue accepts template names for background propagation.
type Queue interface {
	// Enqueue reports false when the queue is full or stopped.
	Enqueue(templateName string) bool
}
