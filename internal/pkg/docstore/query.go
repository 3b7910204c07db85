package docstore

import (
	"errors"
	"fmt"
)

// Operator is a comparison used in a query filter.
type Operator string

const (
	OpEqual          Operator = "=="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

func (o Operator) valid() bool {
	switch o {
	case OpEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return true
	}
	return false
}

// Direction of an OrderBy clause.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// DocumentID can be used as an OrderBy field to order by document id.
const DocumentID = "__id__"

var ErrInvalidQuery = errors.New("invalid query")

// Filter is a single field comparison.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Cursor marks the position after which a query resumes: the order-by value of the last
// document and its full path, which breaks ties.
type Cursor struct {
	Value any
	Path  string
}

// Query describes a read over one collection or over every collection sharing a name.
// Queries are values; every builder method returns a modified copy.
type Query struct {
	source    string
	group     bool
	filters   []Filter
	orderBy   string
	direction Direction
	limit     int
	after     *Cursor
}

// From queries the documents of a single collection path.
func From(collection string) Query {
	return Query{source: collection}
}

// Group queries every collection whose last path segment equals name.
func Group(name string) Query {
	return Query{source: name, group: true}
}

func (q Query) Where(field string, op Operator, value any) Query {
	filters := make([]Filter, 0, len(q.filters)+1)
	filters = append(filters, q.filters...)
	q.filters = append(filters, Filter{Field: field, Op: op, Value: Normalize(value)})
	return q
}

// OrderBy sorts by a single field. Documents without the field are excluded from the result.
func (q Query) OrderBy(field string, dir Direction) Query {
	q.orderBy = field
	q.direction = dir
	return q
}

func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// StartAfter resumes the query after the given document.
func (q Query) StartAfter(s *Snapshot) Query {
	if s == nil {
		q.after = nil
		return q
	}
	c := &Cursor{Path: s.Ref.Path()}
	switch q.orderBy {
	case "":
	case DocumentID:
		c.Value = s.Ref.ID
	default:
		c.Value, _ = Lookup(s.Data, q.orderBy)
	}
	q.after = c
	return q
}

// StartAfterCursor resumes the query after an explicit cursor.
func (q Query) StartAfterCursor(c *Cursor) Query {
	q.after = c
	return q
}

// Source returns the collection path (or group name) and whether it is a group query.
func (q Query) Source() (string, bool) {
	return q.source, q.group
}

func (q Query) Filters() []Filter {
	return q.filters
}

func (q Query) Order() (string, Direction) {
	return q.orderBy, q.direction
}

func (q Query) LimitCount() int {
	return q.limit
}

func (q Query) After() *Cursor {
	return q.after
}

// Validate checks the query is executable by every backend.
func (q Query) Validate() error {
	if q.source == "" {
		return fmt.Errorf("%w: missing collection", ErrInvalidQuery)
	}
	if q.limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	for _, f := range q.filters {
		if f.Field == "" {
			return fmt.Errorf("%w: empty filter field", ErrInvalidQuery)
		}
		if !f.Op.valid() {
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Op)
		}
	}
	return nil
}
