package storage

import (
	"encoding/json"
	"fmt"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/logging"
)

const keyNamespace = "expense_sync"

// Record is anything addressable by a stable client-side identifier.
type Record interface {
	RecordID() string
}

// Collection keeps one named record set in memory and mirrors every mutation
// to the KV as a whole-collection JSON snapshot under a namespaced key.
// The in-memory state stays authoritative when a KV write fails; callers get
// the error so the condition can be surfaced to the user.
type Collection[T Record] struct {
	kv       KV
	name     string
	key      string
	records  []T
	onChange func()
}

func NewCollection[T Record](kv KV, name string) *Collection[T] {
	c := &Collection[T]{
		kv:   kv,
		name: name,
		key:  keyNamespace + ":" + name,
	}
	c.load()
	return c
}

// SetOnChange registers a callback fired after every mutation, so the caller
// can re-render or recompute aggregates without polling.
func (c *Collection[T]) SetOnChange(fn func()) {
	c.onChange = fn
}

func (c *Collection[T]) load() {
	raw, ok, err := c.kv.Get(c.key)
	if err != nil {
		logging.Logger.Warnf("failed to read collection %q, starting empty: %v", c.name, err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var records []T
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// Corrupt snapshots are discarded, never propagated.
		logging.Logger.Warnf("corrupt snapshot for collection %q, discarding: %v", c.name, err)
		if err := c.kv.Delete(c.key); err != nil {
			logging.Logger.Warnf("failed to discard corrupt snapshot for collection %q: %v", c.name, err)
		}
		return
	}
	c.records = records
}

func (c *Collection[T]) GetAll() []T {
	result := make([]T, len(c.records))
	copy(result, c.records)
	return result
}

func (c *Collection[T]) Get(id string) (T, bool) {
	for _, rec := range c.records {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Put inserts the record, or replaces the stored record with the same id.
func (c *Collection[T]) Put(rec T) error {
	replaced := false
	for i, existing := range c.records {
		if existing.RecordID() == rec.RecordID() {
			c.records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		c.records = append(c.records, rec)
	}
	return c.persist()
}

func (c *Collection[T]) Remove(id string) error {
	for i, rec := range c.records {
		if rec.RecordID() == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			return c.persist()
		}
	}
	return fmt.Errorf("%w: no record %q in collection %q", appErrors.ErrNotFound, id, c.name)
}

func (c *Collection[T]) persist() error {
	defer c.notify()

	data, err := json.Marshal(c.records)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal collection %q: %v", appErrors.ErrStorage, c.name, err)
	}
	if err := c.kv.Set(c.key, string(data)); err != nil {
		return fmt.Errorf("%w: failed to persist collection %q: %v", appErrors.ErrStorage, c.name, err)
	}
	return nil
}

func (c *Collection[T]) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
