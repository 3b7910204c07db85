package docstore

import "fmt"

// MutationKind is the type of write staged in a batch.
type MutationKind int

const (
	MutationSet MutationKind = iota
	MutationMerge
	MutationDelete
)

func (k MutationKind) String() string {
	switch k {
	case MutationSet:
		return "set"
	case MutationMerge:
		return "merge"
	case MutationDelete:
		return "delete"
	}
	return "unknown"
}

// Mutation is one staged write.
type Mutation struct {
	Kind MutationKind
	Ref  Ref
	Data Data
}

// Batch stages writes that a Store commits all-or-nothing.
type Batch struct {
	mutations []Mutation
}

func NewBatch() *Batch {
	return &Batch{}
}

// Set replaces the whole document at ref.
func (b *Batch) Set(ref Ref, data Data) {
	b.mutations = append(b.mutations, Mutation{Kind: MutationSet, Ref: ref, Data: normalizeMap(data)})
}

// Merge deep-merges data into the document at ref, creating it when missing.
func (b *Batch) Merge(ref Ref, data Data) {
	b.mutations = append(b.mutations, Mutation{Kind: MutationMerge, Ref: ref, Data: normalizeMap(data)})
}

func (b *Batch) Delete(ref Ref) {
	b.mutations = append(b.mutations, Mutation{Kind: MutationDelete, Ref: ref})
}

func (b *Batch) Len() int {
	return len(b.mutations)
}

func (b *Batch) Mutations() []Mutation {
	return b.mutations
}

// Validate reports whether the batch can be committed.
func (b *Batch) Validate() error {
	if len(b.mutations) > MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(b.mutations), MaxBatchSize)
	}
	for _, m := range b.mutations {
		if m.Ref.Collection == "" || m.Ref.ID == "" {
			return fmt.Errorf("invalid %s mutation: empty document reference", m.Kind)
		}
	}
	return nil
}
