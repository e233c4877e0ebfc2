// Defines records, filters and their normalization to JSON kinds.

package jsondb

import (
	"encoding/json"
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// IDField is the reserved field holding a record's identifier.
const IDField = "_id"

// Record is a schemaless document.
//
// Stored records only hold JSON kinds: nil, bool, float64, string, []any and
// map[string]any.
type Record map[string]any

// Filter is a set of field values a record must all equal to match.
type Filter map[string]any

// ID returns the record's identifier, or "" if it has none.
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	if err := deepcopy.Copy(&c, r); err != nil {
		// Normalized records only hold JSON kinds, which are always copyable.
		panic(fmt.Sprintf("jsondb: failed to clone record %q: %v", r.ID(), err))
	}
	return c
}

// cloneValue deep copies a JSON value so that records sharing a patch or a
// replacement never alias each other.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	var c any
	if err := deepcopy.Copy(&c, v); err != nil {
		panic(fmt.Sprintf("jsondb: failed to clone %T: %v", v, err))
	}
	return c
}

// normalize converts v into a Record holding only JSON kinds.
//
// The JSON round trip also detaches the result from the caller's maps and
// slices.
func normalize(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

func normalizeRecord(v any) (Record, error) {
	rec, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return rec, nil
}

func normalizeFilter(f Filter) (Filter, error) {
	if len(f) == 0 {
		return nil, nil
	}
	rec, err := normalize(map[string]any(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return Filter(rec), nil
}

// toRecords converts the accepted Insert inputs to normalized records.
func toRecords(data any) ([]Record, error) {
	switch v := data.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil data", ErrInvalidRecord)
	case Record, map[string]any:
		rec, err := normalizeRecord(v)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	case []Record:
		return normalizeAll(len(v), func(i int) any { return v[i] })
	case []map[string]any:
		return normalizeAll(len(v), func(i int) any { return v[i] })
	case []any:
		return normalizeAll(len(v), func(i int) any { return v[i] })
	case json.RawMessage:
		return rawRecords(v)
	case []byte:
		return rawRecords(v)
	case string:
		return rawRecords([]byte(v))
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidRecord, data)
	}
}

func normalizeAll(n int, at func(int) any) ([]Record, error) {
	out := make([]Record, 0, n)
	for i := range n {
		item := at(i)
		if !isObject(item) {
			return nil, fmt.Errorf("%w: element %d is %T, not an object", ErrInvalidRecord, i, item)
		}
		rec, err := normalizeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func isObject(v any) bool {
	switch v.(type) {
	case Record, map[string]any:
		return true
	default:
		return false
	}
}

// rawRecords decodes a JSON object or array of objects.
func rawRecords(data []byte) ([]Record, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	switch t := v.(type) {
	case map[string]any:
		return []Record{Record(t)}, nil
	case []any:
		return normalizeAll(len(t), func(i int) any { return t[i] })
	default:
		return nil, fmt.Errorf("%w: JSON %T is neither an object nor an array", ErrInvalidRecord, v)
	}
}
