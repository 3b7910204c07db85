package docstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Data is the body of a document. Values are JSON compatible: nil, bool, float64, string,
// []any and map[string]any.
type Data = map[string]any

// ToData converts a struct (or map) into document data using its JSON representation.
func ToData(v any) (Data, error) {
	if d, ok := v.(Data); ok {
		return normalizeMap(d), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var out Data
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("document must encode to an object, got %T", v)
	}
	return out, nil
}

// Decode fills v from document data.
func Decode(data Data, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// Normalize converts v to its JSON-compatible form so values coming from Go structs,
// literals and any backend compare the same way.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, float64, string:
		return t
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case map[string]any:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

// Lookup resolves a dotted field path such as "attachment.Name.value".
func Lookup(data Data, field string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(field, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

const (
	kindNull = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindMap
)

func kindOf(v any) int {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case float64:
		return kindNumber
	case string:
		return kindString
	case []any:
		return kindArray
	default:
		return kindMap
	}
}

// Compare orders two normalized values. Values of different kinds are ordered by kind;
// the second result reports whether both values share a kind.
func Compare(a, b any) (int, bool) {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		if ka < kb {
			return -1, false
		}
		return 1, false
	}
	switch ka {
	case kindNull:
		return 0, true
	case kindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case kindNumber:
		x, y := a.(float64), b.(float64)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case kindString:
		return strings.Compare(a.(string), b.(string)), true
	}
	ra, _ := json.Marshal(a)
	rb, _ := json.Marshal(b)
	return strings.Compare(string(ra), string(rb)), true
}

// MergeData deep-merges src into a copy of dst. Nested maps merge; every other value,
// including arrays, replaces the existing one.
func MergeData(dst, src Data) Data {
	out := Clone(dst)
	if out == nil {
		out = Data{}
	}
	for k, v := range src {
		incoming, isMap := v.(map[string]any)
		existing, wasMap := out[k].(map[string]any)
		if isMap && wasMap {
			out[k] = MergeData(existing, incoming)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Clone returns a deep copy of data.
func Clone(data Data) Data {
	if data == nil {
		return nil
	}
	out := make(Data, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return t
	}
}
