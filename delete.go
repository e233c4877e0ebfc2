package jsondb

// FindOneAndDelete removes the first record matching filter and returns it,
// or nil when nothing matches.
func (s *Store) FindOneAndDelete(filter Filter) (Record, error) {
	out, err := s.delete(filter, 1)
	if len(out) == 0 {
		return nil, err
	}
	return out[0], err
}

// FindManyAndDelete removes every record matching filter and returns them in
// enumeration order. The returned records are independent of the store.
func (s *Store) FindManyAndDelete(filter Filter) ([]Record, error) {
	return s.delete(filter, 0)
}

// DeleteOne is FindOneAndDelete returning the number of deleted records.
func (s *Store) DeleteOne(filter Filter) (int, error) {
	out, err := s.delete(filter, 1)
	return len(out), err
}

// DeleteMany is FindManyAndDelete returning the number of deleted records.
func (s *Store) DeleteMany(filter Filter) (int, error) {
	out, err := s.delete(filter, 0)
	return len(out), err
}

// FindByIDAndDelete removes the record with the given identifier and returns
// it, or nil when it does not exist.
func (s *Store) FindByIDAndDelete(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	rec, ok := s.docs.Delete(id)
	if !ok {
		return nil, nil
	}
	return rec, s.commit()
}

func (s *Store) delete(filter Filter, limit int) ([]Record, error) {
	f, err := normalizeFilter(filter)
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
		// The removed record is no longer reachable from the store, so it is
		// handed out as is.
		if rec, ok := s.docs.Delete(k); ok {
			out = append(out, rec)
		}
	}
	return out, s.commit()
}
