package docstore

import (
	"fmt"
	"strings"
)

// Ref addresses a single document: the slash separated collection path and the document id.
type Ref struct {
	Collection string
	ID         string
}

// NewRef builds a reference inside the given collection path.
func NewRef(collection, id string) Ref {
	return Ref{Collection: collection, ID: id}
}

// Path returns the full document path, e.g. "Offices/abc/Activities/xyz".
func (r Ref) Path() string {
	return r.Collection + "/" + r.ID
}

// Child returns a reference to a document in a sub-collection of r.
func (r Ref) Child(collection, id string) Ref {
	return Ref{Collection: r.Path() + "/" + collection, ID: id}
}

// Group returns the collection-group name of r (the last collection segment).
func (r Ref) Group() string {
	return GroupOf(r.Collection)
}

func (r Ref) IsZero() bool {
	return r.Collection == "" && r.ID == ""
}

func (r Ref) String() string {
	return r.Path()
}

// GroupOf returns the last segment of a collection path.
func GroupOf(collection string) string {
	if i := strings.LastIndex(collection, "/"); i >= 0 {
		return collection[i+1:]
	}
	return collection
}

// CollectionPath joins path segments into a collection path.
func CollectionPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// ParsePath splits a document path into a Ref. The path must have an even number of segments.
func ParsePath(path string) (Ref, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return Ref{}, fmt.Errorf("invalid document path %q", path)
	}
	for _, s := range segments {
		if s == "" {
			return Ref{}, fmt.Errorf("invalid document path %q", path)
		}
	}
	last := len(segments) - 1
	return Ref{Collection: strings.Join(segments[:last], "/"), ID: segments[last]}, nil
}
