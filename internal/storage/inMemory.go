package storage

type InMemoryKV struct {
	values map[string]string
}

func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{values: make(map[string]string)}
}

func (kv *InMemoryKV) Get(key string) (string, bool, error) {
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *InMemoryKV) Set(key string, value string) error {
	kv.values[key] = value
	return nil
}

func (kv *InMemoryKV) Delete(key string) error {
	delete(kv.values, key)
	return nil
}
