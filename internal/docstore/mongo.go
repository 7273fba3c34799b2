package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore adapts a mongo database to Store.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Collection(name string) Collection {
	return mongoCollection{c: s.db.Collection(name)}
}

func (s *MongoStore) EnsureUniqueEmail(ctx context.Context, collection string) error {
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("docstore: unique email index on %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

type mongoCollection struct {
	c *mongo.Collection
}

func (m mongoCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	cur, err := m.c.Find(ctx, nonNil(filter))
	if err != nil {
		return nil, fmt.Errorf("docstore: find %s: %w", m.c.Name(), err)
	}
	out := make([]Document, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("docstore: read %s: %w", m.c.Name(), err)
	}
	return out, nil
}

func (m mongoCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	var doc Document
	err := m.c.FindOne(ctx, nonNil(filter)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: find one %s: %w", m.c.Name(), err)
	}
	return doc, nil
}

func (m mongoCollection) InsertOne(ctx context.Context, doc Document) (InsertResult, error) {
	res, err := m.c.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return InsertResult{}, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	if err != nil {
		return InsertResult{}, fmt.Errorf("docstore: insert %s: %w", m.c.Name(), err)
	}
	return InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (m mongoCollection) UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error) {
	res, err := m.c.UpdateOne(ctx, nonNil(filter), bson.M{"$set": set})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("docstore: update %s: %w", m.c.Name(), err)
	}
	// The v1 driver returns ErrUnacknowledgedWrite instead of a result for w:0 writes.
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (m mongoCollection) DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error) {
	res, err := m.c.DeleteOne(ctx, nonNil(filter))
	if err != nil {
		return DeleteResult{}, fmt.Errorf("docstore: delete %s: %w", m.c.Name(), err)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (m mongoCollection) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := m.c.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("docstore: count %s: %w", m.c.Name(), err)
	}
	return n, nil
}

// nonNil avoids sending a null filter, which the server rejects.
func nonNil(f Filter) Filter {
	if f == nil {
		return Filter{}
	}
	return f
}
