package document

import (
	"context"
	"fmt"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type propagationRepositoryImpl struct {
	store docstore.Store
}

func NewPropagationRepository(store docstore.Store) propagation.Repository {
	return &propagationRepositoryImpl{store: store}
}

// page runs q from after, stages one mutation per document and commits them together.
func (r *propagationRepositoryImpl) page(ctx context.Context, q docstore.Query, after *docstore.Cursor, limit int, stage func(*docstore.Batch, *docstore.Snapshot) error) (*propagation.Page, error) {
	if limit <= 0 || limit > docstore.MaxBatchSize {
		limit = docstore.MaxBatchSize
	}
	snaps, err := r.store.Query(ctx, q.StartAfterCursor(after).Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	if len(snaps) == 0 {
		return &propagation.Page{}, nil
	}

	b := docstore.NewBatch()
	for _, snap := range snaps {
		if err := stage(b, snap); err != nil {
			return nil, err
		}
	}
	if err := r.store.Commit(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to commit page: %w", err)
	}

	last := snaps[len(snaps)-1]
	next := q.StartAfter(last).After()
	return &propagation.Page{Documents: len(snaps), Next: next}, nil
}

// RefreshSubscriptionActivities implements propagation.Repository.
func (r *propagationRepositoryImpl) RefreshSubscriptionActivities(ctx context.Context, templateName string, after *docstore.Cursor, limit int, timestamp int64) (*propagation.Page, error) {
	q := docstore.Group(Activities).
		Where("template", docstore.OpEqual, template.NameSubscription).
		Where(attachmentValue("Template"), docstore.OpEqual, templateName).
		OrderBy(attachmentValue("Subscriber"), docstore.Asc)

	return r.page(ctx, q, after, limit, func(b *docstore.Batch, snap *docstore.Snapshot) error {
		b.Merge(snap.Ref, docstore.Data{"timestamp": timestamp})
		return nil
	})
}

// SnapshotSubscriptions implements propagation.Repository.
func (r *propagationRepositoryImpl) SnapshotSubscriptions(ctx context.Context, t *template.Template, after *docstore.Cursor, limit int, timestamp int64) (*propagation.Page, error) {
	snapshot, err := encode(struct {
		Attachment     template.Attachment  `json:"attachment"`
		Schedule       []string             `json:"schedule"`
		Venue          []string             `json:"venue"`
		CanEditRule    template.CanEditRule `json:"canEditRule"`
		StatusOnCreate template.Status      `json:"statusOnCreate"`
		Hidden         int                  `json:"hidden"`
	}{t.Attachment, t.Schedule, t.Venue, t.CanEditRule, t.StatusOnCreate, t.Hidden})
	if err != nil {
		return nil, err
	}

	q := docstore.Group(Subscriptions).
		Where("template", docstore.OpEqual, t.Name).
		OrderBy(docstore.DocumentID, docstore.Asc)

	return r.page(ctx, q, after, limit, func(b *docstore.Batch, snap *docstore.Snapshot) error {
		// Replace rather than merge so fields dropped from the template disappear
		data := docstore.Clone(snap.Data)
		for k, v := range docstore.Clone(snapshot) {
			data[k] = v
		}
		data["timestamp"] = timestamp
		b.Set(snap.Ref, data)
		return nil
	})
}

// RefreshActivities implements propagation.Repository.
func (r *propagationRepositoryImpl) RefreshActivities(ctx context.Context, t *template.Template, after *docstore.Cursor, limit int) (*propagation.Page, error) {
	q := docstore.Group(Activities).
		Where("template", docstore.OpEqual, t.Name).
		OrderBy(docstore.DocumentID, docstore.Asc)

	return r.page(ctx, q, after, limit, func(b *docstore.Batch, snap *docstore.Snapshot) error {
		attachment := make(docstore.Data, len(t.Attachment))
		for name, f := range t.Attachment {
			field := docstore.Data{"type": f.Type}
			if _, ok := snap.Get("attachment." + name).(map[string]any); !ok {
				field["value"] = f.Value
			}
			attachment[name] = field
		}
		b.Merge(snap.Ref, docstore.Data{"attachment": attachment})
		return nil
	})
}

// PurgeUpdates implements propagation.Repository.
func (r *propagationRepositoryImpl) PurgeUpdates(ctx context.Context, uid string, before time.Time, limit int) (*propagation.Page, error) {
	q := docstore.From(UpdatesCollection(uid)).
		Where("timestamp", docstore.OpLess, before.UnixMilli()).
		OrderBy("timestamp", docstore.Asc)

	// Deleted documents drop out of the query, so every page starts from the beginning
	return r.page(ctx, q, nil, limit, func(b *docstore.Batch, snap *docstore.Snapshot) error {
		b.Delete(snap.Ref)
		return nil
	})
}
