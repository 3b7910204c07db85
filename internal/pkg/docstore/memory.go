package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps documents in process memory. It implements the same query and batch
// semantics as the database backed stores and is used for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]memoryDoc
	commits int
	hook    func(*Batch) error
}

type memoryDoc struct {
	ref  Ref
	data Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

// SetCommitHook installs a function called before every commit. A non-nil error aborts
// the commit without applying any mutation.
func (s *MemoryStore) SetCommitHook(hook func(*Batch) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Commits returns the number of successfully committed batches.
func (s *MemoryStore) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryStore) Get(ctx context.Context, ref Ref) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[ref.Path()]
	if !ok {
		return &Snapshot{Ref: ref}, nil
	}
	return &Snapshot{Ref: ref, Data: Clone(doc.data)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	candidates := make([]memoryDoc, 0)
	for _, doc := range s.docs {
		if matches(q, doc.ref, doc.data) {
			candidates = append(candidates, doc)
		}
	}
	s.mu.RUnlock()

	field, dir := q.Order()
	sort.Slice(candidates, func(i, j int) bool {
		c := compareForOrder(field, candidates[i], candidates[j])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})

	result := make([]*Snapshot, 0, len(candidates))
	for _, doc := range candidates {
		if after := q.After(); after != nil {
			c := compareToCursor(field, doc, after)
			if (dir == Asc && c <= 0) || (dir == Desc && c >= 0) {
				continue
			}
		}
		result = append(result, &Snapshot{Ref: doc.ref, Data: Clone(doc.data)})
		if n := q.LimitCount(); n > 0 && len(result) == n {
			break
		}
	}
	return result, nil
}

func (s *MemoryStore) Commit(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hook != nil {
		if err := s.hook(b); err != nil {
			return err
		}
	}
	for _, m := range b.Mutations() {
		key := m.Ref.Path()
		switch m.Kind {
		case MutationSet:
			data := Clone(m.Data)
			if data == nil {
				data = Data{}
			}
			s.docs[key] = memoryDoc{ref: m.Ref, data: data}
		case MutationMerge:
			s.docs[key] = memoryDoc{ref: m.Ref, data: MergeData(s.docs[key].data, m.Data)}
		case MutationDelete:
			delete(s.docs, key)
		}
	}
	s.commits++
	return nil
}

func matches(q Query, ref Ref, data Data) bool {
	source, group := q.Source()
	if group {
		if ref.Group() != source {
			return false
		}
	} else if ref.Collection != source {
		return false
	}

	for _, f := range q.Filters() {
		var (
			v  any
			ok bool
		)
		if f.Field == DocumentID {
			v, ok = ref.ID, true
		} else {
			v, ok = Lookup(data, f.Field)
		}
		if !ok {
			return false
		}
		c, sameKind := Compare(v, f.Value)
		if !sameKind {
			return false
		}
		switch f.Op {
		case OpEqual:
			if c != 0 {
				return false
			}
		case OpLess:
			if c >= 0 {
				return false
			}
		case OpLessOrEqual:
			if c > 0 {
				return false
			}
		case OpGreater:
			if c <= 0 {
				return false
			}
		case OpGreaterOrEqual:
			if c < 0 {
				return false
			}
		}
	}

	if field, _ := q.Order(); field != "" && field != DocumentID {
		if _, ok := Lookup(data, field); !ok {
			return false
		}
	}
	return true
}

func orderValue(field string, doc memoryDoc) any {
	switch field {
	case "":
		return nil
	case DocumentID:
		return doc.ref.ID
	default:
		v, _ := Lookup(doc.data, field)
		return v
	}
}

func compareForOrder(field string, a, b memoryDoc) int {
	if c, _ := Compare(orderValue(field, a), orderValue(field, b)); c != 0 {
		return c
	}
	return strings.Compare(a.ref.Path(), b.ref.Path())
}

func compareToCursor(field string, doc memoryDoc, after *Cursor) int {
	if field != "" {
		if c, _ := Compare(orderValue(field, doc), Normalize(after.Value)); c != 0 {
			return c
		}
	}
	return strings.Compare(doc.ref.Path(), after.Path)
}
