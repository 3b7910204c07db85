package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// MaxBatchSize is the largest number of mutations a single atomic batch may carry.
const MaxBatchSize = 500

var ErrBatchTooLarge = errors.New("batch exceeds the maximum number of mutations")

// Store is a document database with point reads, composed queries and atomic batches.
type Store interface {
	// Get returns the document at ref. A missing document yields a snapshot whose Exists is false.
	Get(ctx context.Context, ref Ref) (*Snapshot, error)

	// Query returns the documents matching q in query order.
	Query(ctx context.Context, q Query) ([]*Snapshot, error)

	// Commit applies every mutation of b atomically, in order.
	Commit(ctx context.Context, b *Batch) error
}

// Snapshot is a document read from the store.
type Snapshot struct {
	Ref  Ref
	Data Data
}

func (s *Snapshot) Exists() bool {
	return s != nil && s.Data != nil
}

// Get returns the value at a dotted field path, or nil.
func (s *Snapshot) Get(field string) any {
	if !s.Exists() {
		return nil
	}
	v, _ := Lookup(s.Data, field)
	return v
}

// String returns the field as a string. Numbers are formatted without a trailing fraction.
func (s *Snapshot) String(field string) string {
	switch v := s.Get(field).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (s *Snapshot) Float(field string) (float64, bool) {
	switch v := s.Get(field).(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (s *Snapshot) Bool(field string) bool {
	v, _ := s.Get(field).(bool)
	return v
}

// Decode fills v with the document body.
func (s *Snapshot) Decode(v any) error {
	if !s.Exists() {
		return fmt.Errorf("document %s does not exist", s.Ref.Path())
	}
	return Decode(s.Data, v)
}

// First runs q with limit 1 and returns the first document or nil.
func First(ctx context.Context, store Store, q Query) (*Snapshot, error) {
	docs, err := store.Query(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// CommitChunked commits mutations in consecutive batches of at most size mutations.
// Batch N+1 is only started after batch N has committed. It returns the number of
// batches committed.
func CommitChunked(ctx context.Context, store Store, mutations []Mutation, size int) (int, error) {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	committed := 0
	for start := 0; start < len(mutations); start += size {
		end := min(start+size, len(mutations))
		batch := &Batch{mutations: mutations[start:end]}
		if err := store.Commit(ctx, batch); err != nil {
			return committed, fmt.Errorf("failed to commit batch %d: %w", committed+1, err)
		}
		committed++
	}
	return committed, nil
}
