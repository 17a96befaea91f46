package kvstore

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/ethdb"
)

// PebbleStore is a Store backed by Pebble. Batches are synced on write since
// a ledger commit must survive a crash once the caller has seen it.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a Pebble store at path.
func OpenPebble(path string, cacheMB int) (*PebbleStore, error) {
	if cacheMB <= 0 {
		cacheMB = 16
	}
	cache := pebble.NewCache(int64(cacheMB) << 20)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:                       cache,
		MemTableSize:                4 << 20,
		MemTableStopWritesThreshold: 2,
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", path, err)
	}
	return &PebbleStore{db: db}, nil
}

// Has reports whether key exists.
func (s *PebbleStore) Has(key []byte) (bool, error) {
	_, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

// Get returns a copy of the value stored under key.
func (s *PebbleStore) Get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// value is only valid until closer.Close()
	return copyBytes(value), nil
}

// NewBatch returns a write-only batch that is applied atomically on Write.
func (s *PebbleStore) NewBatch() ethdb.Batch {
	return &pebbleBatch{db: s.db}
}

// Close closes the database.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

type pebbleOp struct {
	key, value []byte
	del        bool
}

// pebbleBatch buffers operations so it can be replayed and reset like the
// go-ethereum batches; the pebble batch is only built on Write.
type pebbleBatch struct {
	db   *pebble.DB
	ops  []pebbleOp
	size int
}

func (b *pebbleBatch) Put(key, value []byte) error {
	b.ops = append(b.ops, pebbleOp{key: copyBytes(key), value: copyBytes(value)})
	b.size += len(key) + len(value)
	return nil
}

func (b *pebbleBatch) Delete(key []byte) error {
	b.ops = append(b.ops, pebbleOp{key: copyBytes(key), del: true})
	b.size += len(key)
	return nil
}

func (b *pebbleBatch) ValueSize() int {
	return b.size
}

func (b *pebbleBatch) Write() error {
	batch := b.db.NewBatch()
	defer batch.Close()

	for _, op := range b.ops {
		var err error
		if op.del {
			err = batch.Delete(op.key, nil)
		} else {
			err = batch.Set(op.key, op.value, nil)
		}
		if err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (b *pebbleBatch) Reset() {
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *pebbleBatch) Replay(w ethdb.KeyValueWriter) error {
	for _, op := range b.ops {
		var err error
		if op.del {
			err = w.Delete(op.key)
		} else {
			err = w.Put(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
