package kvstore

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/ethdb"
)

var errDeleteUnsupported = errors.New("kvstore: journal does not support delete")

// Journal stages writes on top of a read-only parent. Reads see the staged
// writes first and fall through to the parent otherwise. Nothing reaches the
// parent until Replay (or Commit) is called; dropping the journal discards
// every staged write.
//
// Journals nest: a journal is itself a KeyValueReader and KeyValueWriter, so
// a child journal can be opened over it and replayed into it.
type Journal struct {
	parent ethdb.KeyValueReader
	dirty  map[string][]byte
}

// NewJournal opens an empty journal over parent.
func NewJournal(parent ethdb.KeyValueReader) *Journal {
	return &Journal{
		parent: parent,
		dirty:  make(map[string][]byte),
	}
}

// Has reports whether key is staged or present in the parent.
func (j *Journal) Has(key []byte) (bool, error) {
	if _, ok := j.dirty[string(key)]; ok {
		return true, nil
	}
	return j.parent.Has(key)
}

// Get returns the staged value for key, or the parent's value.
func (j *Journal) Get(key []byte) ([]byte, error) {
	if v, ok := j.dirty[string(key)]; ok {
		return copyBytes(v), nil
	}
	v, ok, err := Lookup(j.parent, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Put stages a write. The value is copied.
func (j *Journal) Put(key, value []byte) error {
	j.dirty[string(key)] = copyBytes(value)
	return nil
}

// Delete is not supported: ledger entries are never removed, stale ones just
// become unreachable.
func (j *Journal) Delete(key []byte) error {
	return errDeleteUnsupported
}

// Len returns the number of staged keys.
func (j *Journal) Len() int {
	return len(j.dirty)
}

// Replay writes every staged pair into w in key order.
func (j *Journal) Replay(w ethdb.KeyValueWriter) error {
	keys := make([]string, 0, len(j.dirty))
	for k := range j.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.Put([]byte(k), j.dirty[k]); err != nil {
			return err
		}
	}
	return nil
}

// Commit replays the journal into a single batch of b and writes it.
// Either every staged pair lands or none does.
func (j *Journal) Commit(b ethdb.Batcher) error {
	if len(j.dirty) == 0 {
		return nil
	}
	batch := b.NewBatch()
	if err := j.Replay(batch); err != nil {
		return err
	}
	return batch.Write()
}

func copyBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
