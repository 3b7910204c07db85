package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rajatch15/backend-cloud-functions/internal/pkg/database"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

func TestBuildFilter_CursorUsesPathTieBreak(t *testing.T) {
	q := docstore.From("Offices/o1/Activities").
		Where("template", docstore.OpEqual, "subscription").
		OrderBy("attachment.Subscriber.value", docstore.Asc).
		StartAfterCursor(&docstore.Cursor{Value: "+911", Path: "Offices/o1/Activities/a1"})

	filter, sort := buildFilter(q)

	require.Len(t, filter, 1)
	clauses, ok := filter[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 4)
	assert.Equal(t, bson.D{{Key: "collection", Value: "Offices/o1/Activities"}}, clauses[0])
	assert.Equal(t, bson.D{{Key: "data.template", Value: bson.D{{Key: "$eq", Value: "subscription"}}}}, clauses[1])
	assert.Equal(t, bson.D{{Key: "data.attachment.Subscriber.value", Value: bson.D{{Key: "$exists", Value: true}}}}, clauses[2])
	assert.Equal(t, bson.D{
		{Key: "data.attachment.Subscriber.value", Value: 1},
		{Key: "_id", Value: 1},
	}, sort)
}

func TestBuildFilter_GroupByDocumentIDDescending(t *testing.T) {
	q := docstore.Group("Subscriptions").OrderBy(docstore.DocumentID, docstore.Desc)

	filter, sort := buildFilter(q)

	clauses := filter[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "group", Value: "Subscriptions"}}, clauses[0])
	assert.Len(t, clauses, 1)
	assert.Equal(t, bson.D{{Key: "id", Value: -1}, {Key: "_id", Value: -1}}, sort)
}

func TestFromBSON_NormalisesNumbersAndDocuments(t *testing.T) {
	data := fromBSONMap(bson.M{
		"count":  int32(3),
		"nested": bson.D{{Key: "n", Value: int64(2)}},
		"list":   bson.A{int32(1), "x"},
	})

	assert.Equal(t, 3.0, data["count"])
	assert.Equal(t, docstore.Data{"n": 2.0}, data["nested"])
	assert.Equal(t, []any{1.0, "x"}, data["list"])
}

func TestDocumentStore_Integration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db, err := database.NewMongoDB(uri, fmt.Sprintf("docstore_test_%d", os.Getpid()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.DB.Drop(context.Background())
		_ = db.Close(context.Background())
	})

	store, err := NewDocumentStore(ctx, db)
	require.NoError(t, err)

	b := docstore.NewBatch()
	for i := 0; i < 5; i++ {
		b.Set(docstore.NewRef("Offices/o1/Activities", fmt.Sprintf("a%d", i)),
			docstore.Data{"template": "check-in", "timestamp": i})
	}
	require.NoError(t, store.Commit(ctx, b))

	docs, err := store.Query(ctx, docstore.From("Offices/o1/Activities").
		Where("timestamp", docstore.OpGreaterOrEqual, 2).
		OrderBy("timestamp", docstore.Desc))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a4", docs[0].Ref.ID)
	assert.Equal(t, 4.0, docs[0].Get("timestamp"))

	ref := docstore.NewRef("Offices/o1/Activities", "a0")
	b = docstore.NewBatch()
	b.Merge(ref, docstore.Data{"attachment": docstore.Data{"Name": docstore.Data{"value": "x"}}})
	require.NoError(t, store.Commit(ctx, b))

	snap, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "check-in", snap.String("template"))
	assert.Equal(t, "x", snap.String("attachment.Name.value"))
}
