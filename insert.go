package jsondb

import "fmt"

// Insert stores one record or a sequence of records.
//
// data may be a Record, a map[string]any, a slice of either, a []any of
// objects, or raw JSON ([]byte, json.RawMessage or string) holding an object
// or an array of objects. Every element is validated before any is stored.
// Each stored record gets a fresh _id, replacing any _id it carried.
func (s *Store) Insert(data any) ([]Record, error) {
	recs, err := toRecords(data)
	if err != nil {
		return nil, err
	}
	return s.insert(recs)
}

// InsertOne stores rec under a fresh _id and returns the stored record.
func (s *Store) InsertOne(rec map[string]any) (Record, error) {
	r, err := normalizeRecord(rec)
	if err != nil {
		return nil, err
	}
	out, err := s.insert([]Record{r})
	if len(out) == 0 {
		return nil, err
	}
	return out[0], err
}

// InsertMany stores every record of recs and writes the file once.
func (s *Store) InsertMany(recs []map[string]any) ([]Record, error) {
	rs, err := normalizeAll(len(recs), func(i int) any { return recs[i] })
	if err != nil {
		return nil, err
	}
	return s.insert(rs)
}

func (s *Store) insert(recs []Record) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	for _, r := range recs {
		id := s.ids.NewID()
		if id == "" {
			return nil, fmt.Errorf("%w: identifier generator returned an empty id", ErrInvalidRecord)
		}
		r[IDField] = id
	}
	for _, r := range recs {
		s.docs.Set(r.ID(), r)
	}
	return cloneAll(recs), s.commit()
}
