package jsondb

// Find returns clones of all records matching filter, in enumeration order.
// A nil or empty filter returns every record.
func (s *Store) Find(filter Filter) ([]Record, error) {
	return s.FindMany(filter)
}

// FindMany returns clones of all records matching filter.
func (s *Store) FindMany(filter Filter) ([]Record, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.scan(f, 0)
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		rec, _ := s.docs.Get(k)
		out = append(out, rec.Clone())
	}
	return out, nil
}

// FindOne returns a clone of the first record matching filter, or nil.
func (s *Store) FindOne(filter Filter) (Record, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.scan(f, 1)
	if len(keys) == 0 {
		return nil, nil
	}
	rec, _ := s.docs.Get(keys[0])
	return rec.Clone(), nil
}

// FindByID returns a clone of the record with the given identifier, or nil.
func (s *Store) FindByID(id string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs.Get(id)
	if !ok {
		return nil
	}
	return rec.Clone()
}

// Exists reports whether at least one record matches filter.
func (s *Store) Exists(filter Filter) (bool, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scan(f, 1)) > 0, nil
}
