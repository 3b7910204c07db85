package propagation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/document"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func field(typ string, value any) docstore.Data {
	return docstore.Data{"type": typ, "value": value}
}

func subscriptionActivity(subscriber, templateName string) docstore.Data {
	return docstore.Data{
		"template": "subscription",
		"status":   "CONFIRMED",
		"attachment": docstore.Data{
			"Subscriber": field("phoneNumber", subscriber),
			"Template":   field("string", templateName),
		},
		"timestamp": 1,
	}
}

func seed(t *testing.T, docs map[string]docstore.Data) *docstore.MemoryStore {
	t.Helper()
	store := docstore.NewMemoryStore()
	b := docstore.NewBatch()
	for path, data := range docs {
		ref, err := docstore.ParsePath(path)
		require.NoError(t, err)
		b.Set(ref, data)
	}
	require.NoError(t, store.Commit(context.Background(), b))
	return store
}

func leaveDocs() map[string]docstore.Data {
	return map[string]docstore.Data{
		"ActivityTemplates/t-leave": {
			"name":     "leave",
			"schedule": []any{"Leave Dates"},
			"venue":    []any{},
			"attachment": docstore.Data{
				"Reason":   field("string", ""),
				"Type":     field("leave-type", ""),
				"Half Day": field("boolean", false),
			},
			"canEditRule":    "CREATOR",
			"statusOnCreate": "PENDING",
		},
		"ActivityTemplates/t-checkin": {"name": "check-in", "attachment": docstore.Data{}},

		"Offices/o1/Activities/s1": subscriptionActivity("+913", "leave"),
		"Offices/o1/Activities/s2": subscriptionActivity("+911", "leave"),
		"Offices/o2/Activities/s3": subscriptionActivity("+912", "leave"),
		"Offices/o1/Activities/s4": subscriptionActivity("+911", "check-in"),

		"Profiles/+911/Subscriptions/sub1": {
			"template":   "leave",
			"office":     "Acme",
			"status":     "CONFIRMED",
			"include":    []any{"+912"},
			"attachment": docstore.Data{"Reason": field("string", ""), "Old": field("string", "x")},
		},
		"Profiles/+912/Subscriptions/sub2": {"template": "leave", "office": "Acme", "status": "CANCELLED"},
		"Profiles/+911/Subscriptions/sub3": {"template": "check-in", "office": "Acme"},

		"Offices/o1/Activities/a1": {
			"template": "leave",
			"attachment": docstore.Data{
				"Reason": field("string", "fever"),
				"Type":   field("string", "sick"),
			},
		},
		"Offices/o1/Activities/a2": {"template": "leave", "attachment": docstore.Data{}},
		"Offices/o1/Activities/c1": {"template": "check-in", "attachment": docstore.Data{}},
	}
}

func newTestService(store docstore.Store, config Config) *PropagationServiceImpl {
	svc := NewPropagationService(
		document.NewPropagationRepository(store),
		document.NewTemplateRepository(store),
		config,
	).(*PropagationServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func get(t *testing.T, store docstore.Store, path string) *docstore.Snapshot {
	t.Helper()
	ref, err := docstore.ParsePath(path)
	require.NoError(t, err)
	snap, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	return snap
}

func TestPropagateTemplate(t *testing.T) {
	store := seed(t, leaveDocs())
	svc := newTestService(store, Config{PageSize: 2})

	result, err := svc.PropagateTemplate(context.Background(), "leave")
	require.NoError(t, err)

	assert.Equal(t, propagation.Result{Pages: 2, Documents: 3}, result.SubscriptionActivities)
	assert.Equal(t, propagation.Result{Pages: 1, Documents: 2}, result.Subscriptions)
	assert.Equal(t, propagation.Result{Pages: 1, Documents: 2}, result.Activities)

	stamp := float64(now.UnixMilli())
	for _, path := range []string{"Offices/o1/Activities/s1", "Offices/o1/Activities/s2", "Offices/o2/Activities/s3"} {
		assert.Equal(t, stamp, get(t, store, path).Get("timestamp"), path)
	}
	assert.Equal(t, 1.0, get(t, store, "Offices/o1/Activities/s4").Get("timestamp"))

	sub := get(t, store, "Profiles/+911/Subscriptions/sub1")
	assert.Nil(t, sub.Get("attachment.Old"), "fields dropped from the template disappear")
	assert.Equal(t, "leave-type", sub.String("attachment.Type.type"))
	assert.Equal(t, "CONFIRMED", sub.String("status"))
	assert.Equal(t, []any{"+912"}, sub.Get("include"))
	assert.Equal(t, []any{"Leave Dates"}, sub.Get("schedule"))
	assert.Equal(t, "CREATOR", sub.String("canEditRule"))
	assert.Equal(t, stamp, sub.Get("timestamp"))
	assert.Equal(t, "CANCELLED", get(t, store, "Profiles/+912/Subscriptions/sub2").String("status"))
	assert.Nil(t, get(t, store, "Profiles/+911/Subscriptions/sub3").Get("timestamp"))

	a1 := get(t, store, "Offices/o1/Activities/a1")
	assert.Equal(t, "fever", a1.String("attachment.Reason.value"))
	assert.Equal(t, "leave-type", a1.String("attachment.Type.type"))
	assert.Equal(t, "sick", a1.String("attachment.Type.value"), "existing values are kept")
	assert.Equal(t, "boolean", a1.String("attachment.Half Day.type"))
	assert.Equal(t, false, a1.Get("attachment.Half Day.value"))
	assert.Equal(t, "", get(t, store, "Offices/o1/Activities/a2").Get("attachment.Reason.value"))
}

func TestPropagateTemplate_IsIdempotent(t *testing.T) {
	store := seed(t, leaveDocs())
	svc := newTestService(store, Config{PageSize: 2})
	ctx := context.Background()

	_, err := svc.PropagateTemplate(ctx, "leave")
	require.NoError(t, err)
	first := get(t, store, "Offices/o1/Activities/a1").Data

	_, err = svc.PropagateTemplate(ctx, "leave")
	require.NoError(t, err)
	assert.Equal(t, first, get(t, store, "Offices/o1/Activities/a1").Data)
}

func TestPropagateTemplate_CheckInSkipsActivities(t *testing.T) {
	store := seed(t, leaveDocs())
	svc := newTestService(store, Config{})

	result, err := svc.PropagateTemplate(context.Background(), "check-in")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SubscriptionActivities.Documents)
	assert.Equal(t, 1, result.Subscriptions.Documents)
	assert.Zero(t, result.Activities.Pages)
	assert.Nil(t, get(t, store, "Offices/o1/Activities/c1").Get("attachment.Reason"))
}

func TestPropagateTemplate_PagesOfFiveHundred(t *testing.T) {
	docs := leaveDocs()
	for i := range 1001 {
		docs[fmt.Sprintf("Offices/o3/Activities/bulk-%04d", i)] = subscriptionActivity(fmt.Sprintf("+91%07d", i), "leave")
	}
	store := seed(t, docs)
	svc := newTestService(store, Config{PageSize: 500})

	result, err := svc.PropagateTemplate(context.Background(), "leave")
	require.NoError(t, err)

	assert.Equal(t, propagation.Result{Pages: 3, Documents: 1004}, result.SubscriptionActivities)
	assert.Equal(t, float64(now.UnixMilli()), get(t, store, "Offices/o3/Activities/bulk-1000").Get("timestamp"))
}

func TestPropagateTemplate_UnknownTemplate(t *testing.T) {
	svc := newTestService(seed(t, leaveDocs()), Config{})

	_, err := svc.PropagateTemplate(context.Background(), "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPropagateTemplate_StopsOnCancel(t *testing.T) {
	store := seed(t, leaveDocs())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.SetCommitHook(func(*docstore.Batch) error {
		cancel()
		return nil
	})
	svc := newTestService(store, Config{PageSize: 1, PageDelay: time.Hour})

	result, err := svc.PropagateTemplate(ctx, "leave")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, propagation.Result{Pages: 1, Documents: 1}, result.SubscriptionActivities)
	assert.Zero(t, result.Subscriptions.Pages)
}

func TestPurgeAddendum(t *testing.T) {
	docs := map[string]docstore.Data{}
	for i := range 7 {
		docs[fmt.Sprintf("Updates/u1/Addendum/old-%d", i)] = docstore.Data{"timestamp": now.Add(-time.Duration(i+1) * time.Hour).UnixMilli()}
	}
	docs["Updates/u1/Addendum/new"] = docstore.Data{"timestamp": now.Add(time.Hour).UnixMilli()}
	docs["Updates/u2/Addendum/old"] = docstore.Data{"timestamp": now.Add(-time.Hour).UnixMilli()}
	store := seed(t, docs)
	svc := newTestService(store, Config{PageSize: 3})

	result, err := svc.PurgeAddendum(context.Background(), "u1", now)
	require.NoError(t, err)

	assert.Equal(t, &propagation.Result{Pages: 3, Documents: 7}, result)
	assert.Equal(t, 2, store.Len())
	assert.True(t, get(t, store, "Updates/u1/Addendum/new").Exists())
	assert.True(t, get(t, store, "Updates/u2/Addendum/old").Exists())
}
