package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is a map-backed Store. Safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Fields
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Fields)}
}

// PutKeyed upserts the document at key.
func (m *Memory) PutKeyed(_ context.Context, collection, key string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string]Fields)
		m.collections[collection] = c
	}
	c[key] = cloneFields(fields)
	return nil
}

// GetKeyed returns the document at key, or ErrNotFound.
func (m *Memory) GetKeyed(_ context.Context, collection, key string) (Fields, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneFields(fields), nil
}

// ListAll returns every document in the collection, ordered by key
// for deterministic iteration.
func (m *Memory) ListAll(_ context.Context, collection string) ([]Keyed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collections[collection]
	docs := make([]Keyed, 0, len(c))
	for key, fields := range c {
		docs = append(docs, Keyed{Key: key, Fields: cloneFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

// DeleteKeyed removes the document at key if present.
func (m *Memory) DeleteKeyed(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], key)
	return nil
}

// cloneFields guards stored documents against caller-side mutation.
func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if ss, ok := v.([]string); ok {
			cp := make([]string, len(ss))
			copy(cp, ss)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
