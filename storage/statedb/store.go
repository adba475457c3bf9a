package statedb

import (
	"fmt"

	"localshare/storage"
)

// Store is a copy-on-write overlay above a storage.Database. All writes land
// in an in-memory dirty set until Commit flushes them to the backing store.
//
// The keys passed into Get/Update are expected to be fully hashed (keccak256)
// before insertion; the state manager owns key derivation.
//
// Copy produces an independent speculative view sharing the same backing
// database. The state processor executes each instruction against a copy and
// promotes it only when the instruction succeeds, which is what makes every
// instruction all-or-nothing: a failed instruction's copy is simply dropped.
//
// Store is not safe for concurrent use; the node serializes writers.
type Store struct {
	db    storage.Database
	dirty map[string][]byte
}

// New creates a store over the provided database with an empty overlay.
func New(db storage.Database) *Store {
	return &Store{
		db:    db,
		dirty: make(map[string][]byte),
	}
}

// Get retrieves the value for the provided key, consulting the overlay before
// the backing database. A missing key yields a nil value.
func (s *Store) Get(key []byte) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("statedb: store not initialised")
	}
	if value, ok := s.dirty[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return s.db.Get(key)
}

// Has reports whether the key is present in the overlay or backing database.
func (s *Store) Has(key []byte) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("statedb: store not initialised")
	}
	if _, ok := s.dirty[string(key)]; ok {
		return true, nil
	}
	return s.db.Has(key)
}

// Update records the value for the provided key in the overlay.
func (s *Store) Update(key, value []byte) error {
	if s == nil {
		return fmt.Errorf("statedb: store not initialised")
	}
	s.dirty[string(key)] = append([]byte(nil), value...)
	return nil
}

// Copy returns a store sharing the backing database with a cloned overlay. It
// is used to run speculative state transitions that can be discarded.
func (s *Store) Copy() *Store {
	if s == nil {
		return nil
	}
	dirty := make(map[string][]byte, len(s.dirty))
	for k, v := range s.dirty {
		dirty[k] = v
	}
	return &Store{db: s.db, dirty: dirty}
}

// Commit flushes the overlay into the backing database and clears it.
func (s *Store) Commit() error {
	if s == nil {
		return fmt.Errorf("statedb: store not initialised")
	}
	for k, v := range s.dirty {
		if err := s.db.Put([]byte(k), v); err != nil {
			return err
		}
	}
	s.dirty = make(map[string][]byte)
	return nil
}

// PendingWrites reports the number of keys staged in the overlay.
func (s *Store) PendingWrites() int {
	if s == nil {
		return 0
	}
	return len(s.dirty)
}

// Database exposes the backing storage in case callers need to access it
// directly.
func (s *Store) Database() storage.Database {
	return s.db
}
