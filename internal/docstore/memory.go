package docstore

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Database used by tests and the memory driver.
// Documents are copied on the way in and out at the top level only.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	db     *Memory
	order  []string
	docs   map[string]Document
	unique []string
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

// EnsureUnique makes field unique within the named collection.
func (m *Memory) EnsureUnique(collection, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	for _, f := range c.unique {
		if f == field {
			return
		}
	}
	c.unique = append(c.unique, field)
}

func (m *Memory) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collection(name)
}

func (m *Memory) collection(name string) *memoryCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{db: m, docs: make(map[string]Document)}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Ping(context.Context) error  { return nil }
func (m *Memory) Close(context.Context) error { return nil }

func (c *memoryCollection) FindAll(ctx context.Context, filter Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	res := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		if doc := c.docs[id]; matches(doc, filter) {
			res = append(res, copyDoc(doc))
		}
	}
	return res, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	if id, ok := c.first(filter); ok {
		return copyDoc(c.docs[id]), nil
	}
	return nil, ErrNoDocuments
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	stored := copyDoc(doc)
	id := uuid.NewString()
	stored[IDField] = id
	if c.violatesUnique(stored, "") {
		return "", ErrDuplicate
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter Filter, partial Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	id, ok := c.first(filter)
	if !ok {
		return 0, nil
	}
	updated := copyDoc(c.docs[id])
	for k, v := range partial {
		if k == IDField {
			continue
		}
		updated[k] = v
	}
	if c.violatesUnique(updated, id) {
		return 0, ErrDuplicate
	}
	c.docs[id] = updated
	return 1, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	id, ok := c.first(filter)
	if !ok {
		return 0, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (c *memoryCollection) first(filter Filter) (string, bool) {
	if id, ok := filter[IDField].(string); ok {
		doc, found := c.docs[id]
		return id, found && matches(doc, filter)
	}
	for _, id := range c.order {
		if matches(c.docs[id], filter) {
			return id, true
		}
	}
	return "", false
}

func (c *memoryCollection) violatesUnique(doc Document, self string) bool {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for id, other := range c.docs {
			if id != self && reflect.DeepEqual(other[field], v) {
				return true
			}
		}
	}
	return false
}

func matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
