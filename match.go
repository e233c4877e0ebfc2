// Evaluates filters against records.

package jsondb

// Match reports whether rec holds every field of filter with a strictly equal
// value. Fields of rec absent from filter are ignored and an empty filter
// matches every record.
//
// Values are compared as JSON kinds: a string never equals a number and a
// nested object or array in filter never matches, even a structurally equal
// one. Store methods normalize filters before matching; direct callers
// should pass JSON kinds (float64 rather than int).
func Match(rec Record, filter Filter) bool {
	for k, want := range filter {
		got, ok := rec[k]
		if !ok || !strictEqual(got, want) {
			return false
		}
	}
	return true
}

func strictEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	default:
		return false
	}
}

// scan returns the keys of records matching filter in enumeration order,
// stopping after limit matches when limit > 0.
//
// Keys stay valid while the collection is mutated, unlike positions.
// The caller must hold s.mu.
func (s *Store) scan(filter Filter, limit int) []string {
	var keys []string
	for pair := s.docs.Oldest(); pair != nil; pair = pair.Next() {
		if !Match(pair.Value, filter) {
			continue
		}
		keys = append(keys, pair.Key)
		if limit > 0 && len(keys) == limit {
			break
		}
	}
	return keys
}
