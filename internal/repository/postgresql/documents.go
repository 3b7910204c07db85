package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/database"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection       TEXT        NOT NULL,
	collection_group TEXT        NOT NULL,
	id               TEXT        NOT NULL,
	data             JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_group ON documents (collection_group);
CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data jsonb_path_ops);
`

// pathKey orders documents by their full path using byte order.
const pathKey = `((collection || '/' || id) COLLATE "C")`

// DocumentStore is a docstore.Store persisted in a single JSONB table.
type DocumentStore struct {
	db *database.DB
}

func NewDocumentStore(db *database.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Migrate creates the documents table and its indexes.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, documentsSchema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, ref docstore.Ref) (*docstore.Snapshot, error) {
	var data map[string]any
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		ref.Collection, ref.ID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return &docstore.Snapshot{Ref: ref}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", ref.Path(), err)
	}
	if data == nil {
		data = docstore.Data{}
	}
	return &docstore.Snapshot{Ref: ref, Data: data}, nil
}

func (s *DocumentStore) Query(ctx context.Context, query docstore.Query) ([]*docstore.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	sql, args, err := buildSelect(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var result []*docstore.Snapshot
	for rows.Next() {
		var (
			collection, id string
			data           map[string]any
		)
		if err := rows.Scan(&collection, &id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if data == nil {
			data = docstore.Data{}
		}
		result = append(result, &docstore.Snapshot{Ref: docstore.NewRef(collection, id), Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return result, nil
}

// Commit applies the batch inside one transaction. Merges read the current body with
// FOR UPDATE and write back the deep-merged result.
func (s *DocumentStore) Commit(ctx context.Context, b *docstore.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	return WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		for _, m := range b.Mutations() {
			switch m.Kind {
			case docstore.MutationSet:
				if err := upsert(ctx, tx, m.Ref, m.Data); err != nil {
					return err
				}
			case docstore.MutationMerge:
				var current map[string]any
				err := tx.QueryRow(ctx,
					`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
					m.Ref.Collection, m.Ref.ID,
				).Scan(&current)
				if err != nil && !errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("failed to read %s for merge: %w", m.Ref.Path(), err)
				}
				if err := upsert(ctx, tx, m.Ref, docstore.MergeData(current, m.Data)); err != nil {
					return err
				}
			case docstore.MutationDelete:
				if _, err := tx.Exec(ctx,
					`DELETE FROM documents WHERE collection = $1 AND id = $2`,
					m.Ref.Collection, m.Ref.ID,
				); err != nil {
					return fmt.Errorf("failed to delete %s: %w", m.Ref.Path(), err)
				}
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, tx pgx.Tx, ref docstore.Ref, data docstore.Data) error {
	if data == nil {
		data = docstore.Data{}
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ref.Path(), err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (collection, collection_group, id, data, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		ref.Collection, ref.Group(), ref.ID, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", ref.Path(), err)
	}
	return nil
}

var sqlOperators = map[docstore.Operator]string{
	docstore.OpEqual:          "=",
	docstore.OpLess:           "<",
	docstore.OpLessOrEqual:    "<=",
	docstore.OpGreater:        ">",
	docstore.OpGreaterOrEqual: ">=",
}

// buildSelect translates a query into SQL over the documents table. Field values are
// compared as jsonb; range comparisons are restricted to values of the same jsonb type.
func buildSelect(query docstore.Query) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	jsonArg := func(v any) (string, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode query value: %w", err)
		}
		return arg(string(raw)) + "::jsonb", nil
	}

	source, group := query.Source()
	if group {
		conds = append(conds, "collection_group = "+arg(source))
	} else {
		conds = append(conds, "collection = "+arg(source))
	}

	for _, f := range query.Filters() {
		op := sqlOperators[f.Op]
		if f.Field == docstore.DocumentID {
			conds = append(conds, fmt.Sprintf("id %s %s", op, arg(fmt.Sprint(f.Value))))
			continue
		}
		field := "data #> " + arg(strings.Split(f.Field, "."))
		value, err := jsonArg(f.Value)
		if err != nil {
			return "", nil, err
		}
		if f.Op == docstore.OpEqual {
			conds = append(conds, fmt.Sprintf("%s = %s", field, value))
			continue
		}
		conds = append(conds, fmt.Sprintf("(jsonb_typeof(%s) = jsonb_typeof(%s) AND %s %s %s)", field, value, field, op, value))
	}

	orderField, dir := query.Order()
	sortExpr := ""
	switch orderField {
	case "":
	case docstore.DocumentID:
		sortExpr = "to_jsonb(id)"
	default:
		sortExpr = "data #> " + arg(strings.Split(orderField, "."))
		conds = append(conds, sortExpr+" IS NOT NULL")
	}

	direction, cmp := "ASC", ">"
	if dir == docstore.Desc {
		direction, cmp = "DESC", "<"
	}

	if after := query.After(); after != nil {
		if sortExpr == "" {
			conds = append(conds, fmt.Sprintf("%s %s %s", pathKey, cmp, arg(after.Path)))
		} else {
			value, err := jsonArg(docstore.Normalize(after.Value))
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, fmt.Sprintf("(%s, %s) %s (%s, %s COLLATE \"C\")", sortExpr, pathKey, cmp, value, arg(after.Path)))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT collection, id, data FROM documents WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))
	sb.WriteString(" ORDER BY ")
	if sortExpr != "" {
		sb.WriteString(sortExpr + " " + direction + ", ")
	}
	sb.WriteString(pathKey + " " + direction)
	if n := query.LimitCount(); n > 0 {
		sb.WriteString(" LIMIT " + arg(n))
	}
	return sb.String(), args, nil
}
