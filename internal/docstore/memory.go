package docstore

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps collections in process memory.
// It is meant for tests and STORE_DRIVER=memory in local development.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]*memoryCollection{}}
}

func (s *MemoryStore) Collection(name string) Collection {
	return s.collection(name)
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) EnsureUniqueEmail(_ context.Context, collection string) error {
	c := s.collection(collection)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniqueEmail = true
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

type memoryCollection struct {
	mu          sync.Mutex
	docs        []Document
	uniqueEmail bool
}

func (c *memoryCollection) Find(_ context.Context, filter Filter) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Document, 0)
	for _, d := range c.docs {
		if matches(d, filter) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(_ context.Context, filter Filter) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if matches(d, filter) {
			return clone(d), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) InsertOne(_ context.Context, doc Document) (InsertResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := clone(doc)
	if _, ok := d["_id"]; !ok {
		d["_id"] = primitive.NewObjectID()
	}
	for _, existing := range c.docs {
		if reflect.DeepEqual(existing["_id"], d["_id"]) {
			return InsertResult{}, ErrDuplicateKey
		}
		if c.uniqueEmail && d["email"] != nil && reflect.DeepEqual(existing["email"], d["email"]) {
			return InsertResult{}, ErrDuplicateKey
		}
	}
	c.docs = append(c.docs, d)
	return InsertResult{Acknowledged: true, InsertedID: d["_id"]}, nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, filter Filter, set Document) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if !matches(d, filter) {
			continue
		}
		modified := false
		for k, v := range set {
			if cur, ok := d[k]; !ok || !reflect.DeepEqual(cur, v) {
				d[k] = v
				modified = true
			}
		}
		res := UpdateResult{Acknowledged: true, MatchedCount: 1}
		if modified {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return UpdateResult{Acknowledged: true}, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter Filter) (DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return DeleteResult{Acknowledged: true}, nil
}

func (c *memoryCollection) EstimatedCount(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.docs)), nil
}

func matches(d Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := d[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// clone copies the top level so callers cannot mutate stored documents.
func clone(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
