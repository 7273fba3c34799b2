// Package docstore is the document-store contract used by every service.
//
// Documents and filters are bson.M so the Mongo implementation passes them
// straight through. Filters are equality matches on top-level fields.
package docstore

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names in the classroom database.
const (
	Users       = "users"
	Teachers    = "teachers"
	Courses     = "course"
	Classes     = "classes"
	Enrollments = "enroll"
	Payments    = "payments"
)

var (
	ErrNotFound     = errors.New("docstore: document not found")
	ErrDuplicateKey = errors.New("docstore: duplicate key")
	ErrInvalidID    = errors.New("docstore: invalid document id")
)

type Document = bson.M

type Filter = bson.M

// InsertResult mirrors the JSON shape Mongo clients return for insertOne.
type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is the minimal surface services need from a named collection.
type Collection interface {
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// InsertOne returns ErrDuplicateKey when a unique index rejects the document.
	InsertOne(ctx context.Context, doc Document) (InsertResult, error)
	// UpdateOne applies set as a field-level $set on the first match.
	UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
	// EnsureUniqueEmail makes the store reject a second document with the same email.
	EnsureUniqueEmail(ctx context.Context, collection string) error
	Ping(ctx context.Context) error
}

// ByID builds a filter on _id from a hex object id.
func ByID(hex string) (Filter, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return nil, ErrInvalidID
	}
	return Filter{"_id": oid}, nil
}

// ByEmail builds an exact, case-sensitive email filter.
func ByEmail(email string) Filter {
	return Filter{"email": email}
}
