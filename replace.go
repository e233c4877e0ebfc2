package jsondb

// FindOneAndReplace overwrites the first record matching filter with rec,
// keeping the original _id, and returns the new record or nil when nothing
// matches. Any _id in rec is ignored.
func (s *Store) FindOneAndReplace(filter Filter, rec map[string]any) (Record, error) {
	out, err := s.replace(filter, rec, 1)
	if len(out) == 0 {
		return nil, err
	}
	return out[0], err
}

// FindManyAndReplace overwrites every record matching filter with its own
// copy of rec, each keeping its original _id.
func (s *Store) FindManyAndReplace(filter Filter, rec map[string]any) ([]Record, error) {
	return s.replace(filter, rec, 0)
}

// ReplaceOne is FindOneAndReplace returning the number of replaced records.
func (s *Store) ReplaceOne(filter Filter, rec map[string]any) (int, error) {
	out, err := s.replace(filter, rec, 1)
	return len(out), err
}

// ReplaceMany is FindManyAndReplace returning the number of replaced records.
func (s *Store) ReplaceMany(filter Filter, rec map[string]any) (int, error) {
	out, err := s.replace(filter, rec, 0)
	return len(out), err
}

// FindByIDAndReplace overwrites the record with the given identifier with
// rec and returns it, or nil when it does not exist. The result's _id is
// always id.
func (s *Store) FindByIDAndReplace(id string, rec map[string]any) (Record, error) {
	r, err := normalizeRecord(rec)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if _, ok := s.docs.Get(id); !ok {
		return nil, nil
	}
	r[IDField] = id
	s.docs.Set(id, r)
	return r.Clone(), s.commit()
}

func (s *Store) replace(filter Filter, rec map[string]any, limit int) ([]Record, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	r, err := normalizeRecord(rec)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	keys := s.scan(f, limit)
	out := make([]Record, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	for _, k := range keys {
		next := r.Clone()
		next[IDField] = k
		// Set on an existing key keeps its position in the enumeration.
		s.docs.Set(k, next)
		out = append(out, next.Clone())
	}
	return out, s.commit()
}
