package template

import "context"

type Repository interface {
	// GetByName returns ErrTemplateNotFound when no template has the name.
	GetByName(ctx context.Context, name string) (*Template, error)
	// Save writes t under t.ID, assigning an id when it is empty.
	Save(ctx context.Context, t *Template) error
}
