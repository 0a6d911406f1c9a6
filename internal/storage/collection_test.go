package storage

import (
	"errors"
	"testing"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r testRecord) RecordID() string { return r.ID }

// failingKV rejects writes, like a store that ran out of quota.
type failingKV struct {
	*InMemoryKV
	failWrites bool
}

func (kv *failingKV) Set(key string, value string) error {
	if kv.failWrites {
		return errors.New("quota exceeded")
	}
	return kv.InMemoryKV.Set(key, value)
}

func TestCollectionPutGetRemove(t *testing.T) {
	kv := NewInMemoryKV()
	c := NewCollection[testRecord](kv, "things")

	require.NoError(t, c.Put(testRecord{ID: "a", Name: "first"}))
	require.NoError(t, c.Put(testRecord{ID: "b", Name: "second"}))
	require.Len(t, c.GetAll(), 2)

	// Put with an existing id replaces, never duplicates.
	require.NoError(t, c.Put(testRecord{ID: "a", Name: "renamed"}))
	require.Len(t, c.GetAll(), 2)
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "renamed", got.Name)

	require.NoError(t, c.Remove("a"))
	_, ok = c.Get("a")
	require.False(t, ok)

	err := c.Remove("a")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCollectionSurvivesReload(t *testing.T) {
	kv := NewInMemoryKV()

	first := NewCollection[testRecord](kv, "things")
	require.NoError(t, first.Put(testRecord{ID: "a", Name: "persisted"}))

	// A fresh collection over the same KV simulates a process restart.
	second := NewCollection[testRecord](kv, "things")
	got, ok := second.Get("a")
	require.True(t, ok)
	require.Equal(t, "persisted", got.Name)
}

func TestCollectionDiscardsCorruptSnapshot(t *testing.T) {
	kv := NewInMemoryKV()
	require.NoError(t, kv.Set("expense_sync:things", "{not json!"))

	c := NewCollection[testRecord](kv, "things")
	require.Empty(t, c.GetAll())

	// The corrupt entry is dropped, not kept around to trip the next load.
	_, ok, err := kv.Get("expense_sync:things")
	require.NoError(t, err)
	require.False(t, ok)

	// The collection stays usable afterwards.
	require.NoError(t, c.Put(testRecord{ID: "a", Name: "fresh"}))
	require.Len(t, c.GetAll(), 1)
}

func TestCollectionSurfacesWriteFailure(t *testing.T) {
	kv := &failingKV{InMemoryKV: NewInMemoryKV(), failWrites: true}
	c := NewCollection[testRecord](kv, "things")

	err := c.Put(testRecord{ID: "a", Name: "kept in memory"})
	require.ErrorIs(t, err, appErrors.ErrStorage)

	// In-memory state remains the fallback of record.
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "kept in memory", got.Name)
}

func TestCollectionOnChange(t *testing.T) {
	kv := NewInMemoryKV()
	c := NewCollection[testRecord](kv, "things")

	changes := 0
	c.SetOnChange(func() { changes++ })

	require.NoError(t, c.Put(testRecord{ID: "a"}))
	require.NoError(t, c.Remove("a"))
	require.Equal(t, 2, changes)
}
