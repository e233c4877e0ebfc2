// Reads and writes the collection file.

package jsondb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	errNotObject  = errors.New("top-level value is not a JSON object")
	errNullRecord = errors.New("record is null")
)

func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// decodeCollection parses a collection file, keeping the file's key order.
func decodeCollection(data []byte) (*orderedmap.OrderedMap[string, Record], error) {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '{' {
		return nil, errNotObject
	}
	docs := orderedmap.New[string, Record]()
	if err := json.Unmarshal(data, docs); err != nil {
		return nil, err
	}
	for pair := docs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			return nil, fmt.Errorf("key %q: %w", pair.Key, errNullRecord)
		}
	}
	return docs, nil
}

// encodeCollection renders the collection as two-space indented JSON.
func encodeCollection(docs *orderedmap.OrderedMap[string, Record]) ([]byte, error) {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// persist overwrites the file with the full collection.
//
// The content is written to a temporary file in the same directory then
// renamed over the target, so readers never observe a partial file.
// The caller must hold s.mu for writing.
func (s *Store) persist() error {
	data, err := encodeCollection(s.docs)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", s.path, err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Chmod(0o644); err != nil { //nolint:gosec // G302: database files are not secret
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file to %s: %w", s.path, err), os.Remove(tmpPath))
	}
	s.log.Debug("Persisted collection", "count", s.docs.Len(), "bytes", len(data))
	return nil
}
