package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type templateRepositoryImpl struct {
	store docstore.Store
}

func NewTemplateRepository(store docstore.Store) template.Repository {
	return &templateRepositoryImpl{store: store}
}

// GetByName implements template.Repository.
func (r *templateRepositoryImpl) GetByName(ctx context.Context, name string) (*template.Template, error) {
	snap, err := docstore.First(ctx, r.store, docstore.From(Templates).Where("name", docstore.OpEqual, name))
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}
	if snap == nil {
		return nil, template.ErrTemplateNotFound
	}
	t, err := decode[template.Template](snap)
	if err != nil {
		return nil, err
	}
	t.ID = snap.Ref.ID
	return t, nil
}

// Save implements template.Repository.
func (r *templateRepositoryImpl) Save(ctx context.Context, t *template.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	data, err := encode(t)
	if err != nil {
		return err
	}
	b := docstore.NewBatch()
	b.Set(docstore.NewRef(Templates, t.ID), data)
	if err := r.store.Commit(ctx, b); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
