package storage

// KV is the synchronous string-keyed persistence collaborator that backs
// record collections. Implementations must survive process restarts, except
// the in-memory one used by tests.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key string, value string) error
	Delete(key string) error
}
