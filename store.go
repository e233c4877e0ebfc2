package jsondb

import (
	"fmt"
	"iter"
	"log/slog"
	"os"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status tells whether Connect loaded an existing file or created a new one.
type Status int

const (
	// StatusConnected means an existing file was loaded.
	StatusConnected Status = iota + 1
	// StatusCreated means a new empty file was written.
	StatusCreated
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusCreated:
		return "created"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ids      IDGenerator
	log      *slog.Logger
	readOnly bool
}

// WithIDGenerator sets the generator used to assign record identifiers.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		o.ids = g
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithReadOnly opens the store without ever writing to the file. Connect
// fails if the file does not exist and mutations return ErrReadOnly.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// Store is a collection of records mirrored to a JSON file.
type Store struct {
	path     string
	ids      IDGenerator
	log      *slog.Logger
	readOnly bool

	mu    sync.RWMutex
	docs  *orderedmap.OrderedMap[string, Record]
	dirty bool
}

// Connect loads the collection stored at path.
//
// A missing file is created, along with its parent directories, holding an
// empty collection. A file that cannot be parsed is reported as ErrCorrupt
// and never overwritten.
func Connect(path string, opts ...Option) (*Store, Status, error) {
	o := options{ids: KSID, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	s := newStore(path, &o)

	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the caller.
	switch {
	case err == nil && !isBlank(data):
		if err := s.load(data); err != nil {
			return nil, 0, err
		}
		s.log.Debug("Loaded collection", "count", s.docs.Len())
		return s, StatusConnected, nil
	case err == nil:
		// An empty file holds no records; treat it like a missing one.
	case !os.IsNotExist(err):
		return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if s.readOnly {
		if err == nil {
			return s, StatusConnected, nil
		}
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := s.persist(); err != nil {
		return nil, 0, err
	}
	s.log.Debug("Created collection")
	return s, StatusCreated, nil
}

func newStore(path string, o *options) *Store {
	return &Store{
		path:     path,
		ids:      o.ids,
		log:      o.log.With("db", path),
		readOnly: o.readOnly,
		docs:     orderedmap.New[string, Record](),
	}
}

// load replaces the collection with the content of a file.
// The caller must hold s.mu for writing.
func (s *Store) load(data []byte) error {
	docs, err := decodeCollection(data)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrCorrupt, s.path, err)
	}
	s.docs = docs
	s.repairIDs()
	return nil
}

// repairIDs enforces that every record's _id equals its key.
func (s *Store) repairIDs() {
	for pair := s.docs.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.ID() != pair.Key {
			s.log.Warn("Repaired record identifier", "key", pair.Key, "_id", pair.Value[IDField])
			pair.Value[IDField] = pair.Key
			s.dirty = true
		}
	}
}

// Path returns the path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Len()
}

// Size returns the size in bytes of the backing file.
func (s *Store) Size() (int64, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	return fi.Size(), nil
}

// DBSize returns the size of the backing file formatted as "<N> bytes".
func (s *Store) DBSize() (string, error) {
	n, err := s.Size()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d bytes", n), nil
}

// Dirty reports whether the in-memory collection holds changes that could
// not be written to disk.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the full collection to disk.
//
// Mutations already write on success; Flush retries after ErrPersist.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return ErrReadOnly
	}
	return s.commit()
}

// All returns an iterator over clones of all records in enumeration order.
func (s *Store) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for pair := s.docs.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Value.Clone()) {
				return
			}
		}
	}
}

// commit persists the collection after a mutation and tracks divergence.
// The caller must hold s.mu for writing.
func (s *Store) commit() error {
	if err := s.persist(); err != nil {
		s.dirty = true
		s.log.Warn("In-memory collection diverged from disk", "err", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.dirty = false
	return nil
}

// checkWritable must be called with s.mu held.
func (s *Store) checkWritable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

func cloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
