package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/validator"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/document"
)

type recordingQueue struct {
	names []string
	full  bool
}

func (q *recordingQueue) Enqueue(name string) bool {
	if q.full {
		return false
	}
	q.names = append(q.names, name)
	return true
}

func validRequest(name string) template.CreateTemplateRequest {
	return template.CreateTemplateRequest{
		Name:           name,
		DefaultTitle:   "Expense",
		Comment:        "Claims raised by employees",
		Schedule:       []string{"Date"},
		Attachment:     template.Attachment{"Amount": {Type: "number", Value: ""}},
		CanEditRule:    template.CanEditCreator,
		StatusOnCreate: template.StatusPending,
	}
}

func newService() (template.Service, *recordingQueue, template.Repository) {
	repo := document.NewTemplateRepository(docstore.NewMemoryStore())
	queue := &recordingQueue{}
	return NewTemplateService(repo, queue), queue, repo
}

func TestCreate(t *testing.T) {
	svc, queue, repo := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest("expense"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{}, created.Venue)
	assert.Empty(t, queue.names)

	stored, err := repo.GetByName(ctx, "expense")
	require.NoError(t, err)
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, template.StatusPending, stored.StatusOnCreate)

	_, err = svc.Create(ctx, validRequest("expense"))
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.EqualError(t, err, `A template with the name: "expense" already exists.`)
}

func TestCreate_Invalid(t *testing.T) {
	svc, _, _ := newService()

	req := validRequest("expense")
	req.Comment = " "
	req.CanEditRule = "SOMETIMES"
	_, err := svc.Create(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, `The "comment" is invalid/missing`, verrs.ToMap()["comment"])
	assert.Equal(t, `The "canEditRule" is invalid/missing`, verrs.ToMap()["canEditRule"])
}

func TestReservedName(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest("plan"))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.EqualError(t, err, `You cannot update the template "plan".`)

	_, err = svc.Update(ctx, "plan", template.UpdateTemplateRequest{CreateTemplateRequest: validRequest("")})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUpdate(t *testing.T) {
	svc, queue, repo := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, validRequest("expense"))
	require.NoError(t, err)

	req := validRequest("ignored")
	req.Attachment["Receipt"] = template.Field{Type: "base64", Value: ""}
	updated, err := svc.Update(ctx, "expense", template.UpdateTemplateRequest{CreateTemplateRequest: req})

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "expense", updated.Name)
	assert.Equal(t, []string{"expense"}, queue.names)

	stored, err := repo.GetByName(ctx, "expense")
	require.NoError(t, err)
	assert.Contains(t, stored.Attachment, "Receipt")
}

func TestUpdate_Missing(t *testing.T) {
	svc, queue, _ := newService()

	_, err := svc.Update(context.Background(), "expense", template.UpdateTemplateRequest{CreateTemplateRequest: validRequest("")})

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "No template found with the name: 'expense'")
	assert.Empty(t, queue.names)
}

func TestUpdate_QueueFull(t *testing.T) {
	repo := document.NewTemplateRepository(docstore.NewMemoryStore())
	queue := &recordingQueue{full: true}
	svc := NewTemplateService(repo, queue)
	ctx := context.Background()
	_, err := svc.Create(ctx, validRequest("expense"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "expense", template.UpdateTemplateRequest{CreateTemplateRequest: validRequest("")})

	assert.NoError(t, err)
}
