package propagation

import (
	"context"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

// Page is one committed page of a paged job. Next resumes the query after its last document.
type Page struct {
	Documents int
	Next      *docstore.Cursor
}

// Repository commits one page of a propagation pass per call. A page with no documents
// ends the pass.
type Repository interface {
	// RefreshSubscriptionActivities stamps timestamp on subscription activities of the
	// template, ordered by subscriber phone number.
	RefreshSubscriptionActivities(ctx context.Context, templateName string, after *docstore.Cursor, limit int, timestamp int64) (*Page, error)
	// SnapshotSubscriptions rewrites the template definition held by subscriptions.
	SnapshotSubscriptions(ctx context.Context, t *template.Template, after *docstore.Cursor, limit int, timestamp int64) (*Page, error)
	// RefreshActivities updates field types of activities of the template and adds new
	// fields with their default value. Existing values are kept.
	RefreshActivities(ctx context.Context, t *template.Template, after *docstore.Cursor, limit int) (*Page, error)
	// PurgeUpdates deletes up to limit update feed entries of uid older than before.
	PurgeUpdates(ctx context.Context, uid string, before time.Time, limit int) (*Page, error)
}
