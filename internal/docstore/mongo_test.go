package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestMongoCollection_UpdateOneMapsCounts(t *testing.T) {
	mt := newMockT(t)
	mt.Run("matched and modified", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := mongoCollection{c: mt.Coll}.UpdateOne(context.Background(), Filter{"_id": primitive.NewObjectID()}, Document{"role": "admin"})
		require.NoError(mt, err)
		assert.Equal(mt, UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, res)
	})
	mt.Run("already set", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		res, err := mongoCollection{c: mt.Coll}.UpdateOne(context.Background(), Filter{"_id": primitive.NewObjectID()}, Document{"role": "admin"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.MatchedCount)
		assert.Equal(mt, int64(0), res.ModifiedCount)
		assert.True(mt, res.Acknowledged)
	})
}

func TestMongoCollection_DeleteOneMapsCount(t *testing.T) {
	mt := newMockT(t)
	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		res, err := mongoCollection{c: mt.Coll}.DeleteOne(context.Background(), Filter{"_id": primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.Equal(mt, DeleteResult{Acknowledged: true, DeletedCount: 1}, res)
	})
}

func TestMongoCollection_FindOne(t *testing.T) {
	mt := newMockT(t)
	mt.Run("no match is ErrNotFound", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := mongoCollection{c: mt.Coll}.FindOne(context.Background(), ByEmail("nobody@x.com"))
		assert.ErrorIs(mt, err, ErrNotFound)
	})
	mt.Run("match", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "email", Value: "a@x.com"}, {Key: "role", Value: "admin"}},
		))

		doc, err := mongoCollection{c: mt.Coll}.FindOne(context.Background(), ByEmail("a@x.com"))
		require.NoError(mt, err)
		assert.Equal(mt, "admin", doc["role"])
	})
}

func TestMongoCollection_FindReturnsEmptySlice(t *testing.T) {
	mt := newMockT(t)
	mt.Run("find", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		docs, err := mongoCollection{c: mt.Coll}.Find(context.Background(), nil)
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})
}

func TestMongoCollection_InsertOne(t *testing.T) {
	mt := newMockT(t)
	mt.Run("duplicate email is ErrDuplicateKey", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: studentDb.users index: email_unique",
		}))

		_, err := mongoCollection{c: mt.Coll}.InsertOne(context.Background(), Document{"email": "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})
	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		oid := primitive.NewObjectID()
		res, err := mongoCollection{c: mt.Coll}.InsertOne(context.Background(), Document{"_id": oid, "email": "a@x.com"})
		require.NoError(mt, err)
		assert.Equal(mt, InsertResult{Acknowledged: true, InsertedID: oid}, res)
	})
}

func TestMongoCollection_EstimatedCount(t *testing.T) {
	mt := newMockT(t)
	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(3)}))

		n, err := mongoCollection{c: mt.Coll}.EstimatedCount(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestMongoStore_EnsureUniqueEmail(t *testing.T) {
	mt := newMockT(t)
	mt.Run("created", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, NewMongoStore(mt.DB).EnsureUniqueEmail(context.Background(), Users))
	})
	mt.Run("server error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))
		err := NewMongoStore(mt.DB).EnsureUniqueEmail(context.Background(), Users)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "unique email index on users")
	})
}
