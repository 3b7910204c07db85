package office

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Office, error)
	GetByName(ctx context.Context, name string) (*Office, error)
	// ListActive returns every office whose status is not CANCELLED.
	ListActive(ctx context.Context) ([]*Office, error)
	// ListBranches returns the non-cancelled branch activities of the office.
	ListBranches(ctx context.Context, officeID string) ([]Branch, error)
}
