package template

import "context"

type Service interface {
	Create(ctx context.Context, req CreateTemplateRequest) (*Template, error)
	Update(ctx context.Context, name string, req UpdateTemplateRequest) (*Template, error)
	Get(ctx context.Context, name string) (*Template, error)
}
