// Infers a JSON Schema describing the records currently stored.

package jsondb

import (
	"path/filepath"
	"slices"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// jsonType maps a normalized value to its JSON Schema type name.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "string"
	}
}

type fieldStats struct {
	types []string
	seen  int
}

// Schema describes the shape of the stored records.
//
// Properties are listed in the order fields are first seen, walking records
// in enumeration order and each record's fields by name. A field observed
// with several types is described with anyOf. Fields present in every record
// are required. The schema is informational; it is never enforced.
func (s *Store) Schema() *jsonschema.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := orderedmap.New[string, *fieldStats]()
	for pair := s.docs.Oldest(); pair != nil; pair = pair.Next() {
		names := make([]string, 0, len(pair.Value))
		for k := range pair.Value {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, name := range names {
			st, ok := stats.Get(name)
			if !ok {
				st = &fieldStats{}
				stats.Set(name, st)
			}
			st.seen++
			if t := jsonType(pair.Value[name]); !slices.Contains(st.types, t) {
				st.types = append(st.types, t)
			}
		}
	}

	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	for pair := stats.Oldest(); pair != nil; pair = pair.Next() {
		st := pair.Value
		slices.Sort(st.types)
		prop := &jsonschema.Schema{}
		if len(st.types) == 1 {
			prop.Type = st.types[0]
		} else {
			for _, t := range st.types {
				prop.AnyOf = append(prop.AnyOf, &jsonschema.Schema{Type: t})
			}
		}
		if pair.Key == IDField {
			prop.Description = "Record identifier assigned by the store"
		}
		props.Set(pair.Key, prop)
		if st.seen == s.docs.Len() {
			required = append(required, pair.Key)
		}
	}

	return &jsonschema.Schema{
		Version:    jsonschema.Version,
		Title:      filepath.Base(s.path),
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}
