package jsondb

// FindOneAndUpdate merges patch into the first record matching filter and
// returns the updated record, or nil when nothing matches.
//
// The merge is shallow: fields of patch overwrite same-named fields and
// other fields are kept. A patch never changes _id.
func (s *Store) FindOneAndUpdate(filter Filter, patch map[string]any) (Record, error) {
	out, err := s.update(filter, patch, 1)
	if len(out) == 0 {
		return nil, err
	}
	return out[0], err
}

// FindManyAndUpdate merges patch into every record matching filter and
// returns the updated records. The slice is empty, not nil, when nothing
// matches.
func (s *Store) FindManyAndUpdate(filter Filter, patch map[string]any) ([]Record, error) {
	return s.update(filter, patch, 0)
}

// UpdateOne is FindOneAndUpdate returning the number of updated records.
func (s *Store) UpdateOne(filter Filter, patch map[string]any) (int, error) {
	out, err := s.update(filter, patch, 1)
	return len(out), err
}

// UpdateMany is FindManyAndUpdate returning the number of updated records.
func (s *Store) UpdateMany(filter Filter, patch map[string]any) (int, error) {
	out, err := s.update(filter, patch, 0)
	return len(out), err
}

// FindByIDAndUpdate merges patch into the record with the given identifier
// and returns it, or nil when it does not exist.
func (s *Store) FindByIDAndUpdate(id string, patch map[string]any) (Record, error) {
	p, err := normalizeRecord(patch)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	rec, ok := s.docs.Get(id)
	if !ok {
		return nil, nil
	}
	merge(rec, p)
	return rec.Clone(), s.commit()
}

func (s *Store) update(filter Filter, patch map[string]any, limit int) ([]Record, error) {
	f, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	p, err := normalizeRecord(patch)
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
		rec, _ := s.docs.Get(k)
		merge(rec, p)
		out = append(out, rec.Clone())
	}
	return out, s.commit()
}

// merge copies every field of patch except _id onto rec.
func merge(rec, patch Record) {
	for k, v := range patch {
		if k == IDField {
			continue
		}
		rec[k] = cloneValue(v)
	}
}
