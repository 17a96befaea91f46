// Package kvstore provides the key-value backends a quorum ledger is persisted
// in, plus a write journal that stages changes in memory until they are
// committed as one atomic batch.
//
// Backends:
//   - memory: go-ethereum's memorydb, used by tests and throwaway ledgers
//   - leveldb: go-ethereum's leveldb wrapper, the default on-disk backend
//   - pebble: CockroachDB's Pebble, an alternative on-disk backend
package kvstore

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
)

// ErrNotFound is returned by Journal.Get when a key is absent from the
// journal and every store below it.
var ErrNotFound = errors.New("kvstore: not found")

// Store is the durable backend of a ledger. Reads are point lookups only;
// writes always go through a batch so a commit is all-or-nothing.
type Store interface {
	ethdb.KeyValueReader
	ethdb.Batcher
	io.Closer
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendPebble  = "pebble"
)

// NewMemory returns an ephemeral store.
func NewMemory() Store {
	return memorydb.New()
}

// OpenLevelDB opens (or creates) a LevelDB store at path.
func OpenLevelDB(path string, cacheMB, handles int) (Store, error) {
	db, err := leveldb.New(path, cacheMB, handles, "quorum/db/", false)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return db, nil
}

// Open opens a store of the named backend. path is ignored for memory.
func Open(backend, path string, cacheMB, handles int) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendLevelDB:
		return OpenLevelDB(path, cacheMB, handles)
	case BackendPebble:
		s, err := OpenPebble(path, cacheMB)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: memory, leveldb, pebble)", backend)
	}
}

// Lookup reads key from r, reporting absence as (nil, false, nil) instead of
// a backend-specific not-found error.
func Lookup(r ethdb.KeyValueReader, key []byte) ([]byte, bool, error) {
	ok, err := r.Has(key)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := r.Get(key)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
