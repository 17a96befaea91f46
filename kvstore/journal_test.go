package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_ReadsFallThroughToParent(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	require.NoError(t, put(db, "a", "1"))

	j := NewJournal(db)
	v, err := j.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	_, err = j.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournal_StagedWritesInvisibleUntilCommit(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	j := NewJournal(db)
	require.NoError(t, j.Put([]byte("k"), []byte("v")))

	ok, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok, "parent must not see staged write")

	ok, err = j.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, j.Commit(db))

	v, found, err := Lookup(db, []byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestJournal_DroppedJournalLeavesParentUntouched(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	require.NoError(t, put(db, "k", "old"))

	j := NewJournal(db)
	require.NoError(t, j.Put([]byte("k"), []byte("new")))
	j = nil

	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), v)
}

func TestJournal_NestedReplay(t *testing.T) {
	db := NewMemory()
	defer db.Close()

	outer := NewJournal(db)
	require.NoError(t, outer.Put([]byte("a"), []byte("1")))

	inner := NewJournal(outer)
	v, err := inner.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v, "child sees parent's staged writes")

	require.NoError(t, inner.Put([]byte("b"), []byte("2")))
	require.NoError(t, inner.Replay(outer))
	assert.Equal(t, 2, outer.Len())

	require.NoError(t, outer.Commit(db))
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := db.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, []byte(want), got)
	}
}

func TestJournal_ValuesAreCopied(t *testing.T) {
	j := NewJournal(NewMemory())

	buf := []byte("abc")
	require.NoError(t, j.Put([]byte("k"), buf))
	buf[0] = 'x'

	v, err := j.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestJournal_DeleteUnsupported(t *testing.T) {
	j := NewJournal(NewMemory())
	assert.Error(t, j.Delete([]byte("k")))
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{BackendMemory, BackendLevelDB, BackendPebble} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(backend, filepath.Join(dir, backend), 16, 16)
			require.NoError(t, err)
			defer s.Close()

			j := NewJournal(s)
			require.NoError(t, j.Put([]byte("key"), []byte("value")))
			require.NoError(t, j.Commit(s))

			v, found, err := Lookup(s, []byte("key"))
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte("value"), v)

			_, found, err = Lookup(s, []byte("nope"))
			require.NoError(t, err)
			assert.False(t, found)
		})
	}

	_, err := Open("bogus", dir, 0, 0)
	assert.Error(t, err)
}

func put(s Store, k, v string) error {
	b := s.NewBatch()
	if err := b.Put([]byte(k), []byte(v)); err != nil {
		return err
	}
	return b.Write()
}
