package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/rajatch15/backend-cloud-functions/internal/pkg/database"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

const collectionName = "documents"

// record is the stored shape of one document. _id is the full document path.
type record struct {
	Path       string    `bson:"_id"`
	Collection string    `bson:"collection"`
	Group      string    `bson:"group"`
	ID         string    `bson:"id"`
	Data       bson.M    `bson:"data"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// DocumentStore is a docstore.Store kept in a single MongoDB collection.
type DocumentStore struct {
	client *mongo.Client
	docs   *mongo.Collection
}

func NewDocumentStore(ctx context.Context, db *database.MongoDB) (*DocumentStore, error) {
	docs := db.Collection(collectionName)

	if _, err := docs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "collection", Value: 1}, {Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "group", Value: 1}, {Key: "data.template", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create documents indexes: %w", err)
	}

	return &DocumentStore{client: db.Client, docs: docs}, nil
}

func (s *DocumentStore) Get(ctx context.Context, ref docstore.Ref) (*docstore.Snapshot, error) {
	var rec record
	err := s.docs.FindOne(ctx, bson.M{"_id": ref.Path()}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &docstore.Snapshot{Ref: ref}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", ref.Path(), err)
	}
	return &docstore.Snapshot{Ref: ref, Data: fromBSONMap(rec.Data)}, nil
}

func (s *DocumentStore) Query(ctx context.Context, q docstore.Query) ([]*docstore.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	filter, sort := buildFilter(q)

	opts := options.Find().SetSort(sort)
	if n := q.LimitCount(); n > 0 {
		opts.SetLimit(int64(n))
	}

	cursor, err := s.docs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var recs []record
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	result := make([]*docstore.Snapshot, 0, len(recs))
	for _, rec := range recs {
		result = append(result, &docstore.Snapshot{
			Ref:  docstore.NewRef(rec.Collection, rec.ID),
			Data: fromBSONMap(rec.Data),
		})
	}
	return result, nil
}

// Commit applies the batch in a multi-document transaction.
func (s *DocumentStore) Commit(ctx context.Context, b *docstore.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		for _, m := range b.Mutations() {
			if err := s.apply(ctx, m); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *DocumentStore) apply(ctx context.Context, m docstore.Mutation) error {
	path := m.Ref.Path()
	switch m.Kind {
	case docstore.MutationDelete:
		if _, err := s.docs.DeleteOne(ctx, bson.M{"_id": path}); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	case docstore.MutationMerge:
		var current record
		err := s.docs.FindOne(ctx, bson.M{"_id": path}).Decode(&current)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("read %s for merge: %w", path, err)
		}
		return s.replace(ctx, m.Ref, docstore.MergeData(fromBSONMap(current.Data), m.Data))
	default:
		return s.replace(ctx, m.Ref, m.Data)
	}
}

func (s *DocumentStore) replace(ctx context.Context, ref docstore.Ref, data docstore.Data) error {
	if data == nil {
		data = docstore.Data{}
	}
	rec := record{
		Path:       ref.Path(),
		Collection: ref.Collection,
		Group:      ref.Group(),
		ID:         ref.ID,
		Data:       bson.M(data),
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": rec.Path}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("write %s: %w", rec.Path, err)
	}
	return nil
}

var mongoOperators = map[docstore.Operator]string{
	docstore.OpEqual:          "$eq",
	docstore.OpLess:           "$lt",
	docstore.OpLessOrEqual:    "$lte",
	docstore.OpGreater:        "$gt",
	docstore.OpGreaterOrEqual: "$gte",
}

func fieldKey(field string) string {
	if field == docstore.DocumentID {
		return "id"
	}
	return "data." + field
}

// buildFilter translates q into a find filter and sort document. Range operators in
// MongoDB only match values of the same BSON type, which gives the same-kind semantics
// of the other stores.
func buildFilter(q docstore.Query) (bson.D, bson.D) {
	source, group := q.Source()
	sourceKey := "collection"
	if group {
		sourceKey = "group"
	}
	clauses := bson.A{bson.D{{Key: sourceKey, Value: source}}}

	for _, f := range q.Filters() {
		clauses = append(clauses, bson.D{{Key: fieldKey(f.Field), Value: bson.D{{Key: mongoOperators[f.Op], Value: f.Value}}}})
	}

	field, dir := q.Order()
	order, cmp := 1, "$gt"
	if dir == docstore.Desc {
		order, cmp = -1, "$lt"
	}

	sort := bson.D{}
	if field != "" {
		key := fieldKey(field)
		if field != docstore.DocumentID {
			clauses = append(clauses, bson.D{{Key: key, Value: bson.D{{Key: "$exists", Value: true}}}})
		}
		sort = append(sort, bson.E{Key: key, Value: order})
	}
	sort = append(sort, bson.E{Key: "_id", Value: order})

	if after := q.After(); after != nil {
		if field == "" {
			clauses = append(clauses, bson.D{{Key: "_id", Value: bson.D{{Key: cmp, Value: after.Path}}}})
		} else {
			key := fieldKey(field)
			value := docstore.Normalize(after.Value)
			clauses = append(clauses, bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: key, Value: bson.D{{Key: cmp, Value: value}}}},
				bson.D{
					{Key: key, Value: value},
					{Key: "_id", Value: bson.D{{Key: cmp, Value: after.Path}}},
				},
			}}})
		}
	}

	return bson.D{{Key: "$and", Value: clauses}}, sort
}

// fromBSONMap converts decoded BSON into the JSON value model used by docstore.
func fromBSONMap(m bson.M) docstore.Data {
	if m == nil {
		return nil
	}
	out := make(docstore.Data, len(m))
	for k, v := range m {
		out[k] = fromBSON(v)
	}
	return out
}

func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromBSONMap(t)
	case map[string]any:
		return fromBSONMap(bson.M(t))
	case bson.D:
		out := make(docstore.Data, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case []any:
		return fromBSON(bson.A(t))
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case bson.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
