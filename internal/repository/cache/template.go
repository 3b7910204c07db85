package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
)

const templateKeyPrefix = "template:"

// templateRepositoryImpl reads templates through Redis and invalidates on save.
// Redis failures fall back to the wrapped repository.
type templateRepositoryImpl struct {
	next   template.Repository
	client *redis.Client
	ttl    time.Duration
}

func NewTemplateRepository(next template.Repository, client *redis.Client, ttl time.Duration) template.Repository {
	return &templateRepositoryImpl{next: next, client: client, ttl: ttl}
}

func templateKey(name string) string {
	return templateKeyPrefix + name
}

// GetByName implements template.Repository.
func (c *templateRepositoryImpl) GetByName(ctx context.Context, name string) (*template.Template, error) {
	raw, err := c.client.Get(ctx, templateKey(name)).Bytes()
	switch {
	case err == nil:
		var cached cachedTemplate
		if err := json.Unmarshal(raw, &cached); err == nil {
			t := cached.Template
			t.ID = cached.ID
			return &t, nil
		}
		slog.Warn("Template cache: dropping unreadable entry", "template", name)
	case !errors.Is(err, redis.Nil):
		slog.Warn("Template cache: read failed", "template", name, "error", err)
	}

	t, err := c.next.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(ctx, t)
	return t, nil
}

// Save implements template.Repository.
func (c *templateRepositoryImpl) Save(ctx context.Context, t *template.Template) error {
	if err := c.next.Save(ctx, t); err != nil {
		return err
	}
	if err := c.client.Del(ctx, templateKey(t.Name)).Err(); err != nil {
		slog.Warn("Template cache: invalidation failed", "template", t.Name, "error", err)
	}
	return nil
}

// cachedTemplate keeps the document id, which Template omits from JSON.
type cachedTemplate struct {
	template.Template
	ID string `json:"id"`
}

func (c *templateRepositoryImpl) store(ctx context.Context, t *template.Template) {
	raw, err := json.Marshal(cachedTemplate{Template: *t, ID: t.ID})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, templateKey(t.Name), raw, c.ttl).Err(); err != nil {
		slog.Warn("Template cache: write failed", "template", t.Name, "error", err)
	}
}
