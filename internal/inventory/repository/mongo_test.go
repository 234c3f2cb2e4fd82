package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("list keeps bodies verbatim", func(mt *mtest.T) {
		repo := &MongoRepo{client: mt.Client, db: mt.DB}
		ns := mt.DB.Name() + ".assessments"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "1"}, {Key: "seq", Value: int64(1)}, {Key: "body", Value: `{"id":"1","processName":"Alpha","tags":["x",1]}`}},
			bson.D{{Key: "_id", Value: "2"}, {Key: "seq", Value: int64(2)}, {Key: "body", Value: `{"id":"2","processName":"Beta"}`}},
		))
		list, err := repo.List(ctx, "assessments")
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		require.Equal(mt, `["x",1]`, string(list[0]["tags"]))
		require.Equal(mt, "2", list[1].ID())
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := &MongoRepo{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".assessments", mtest.FirstBatch))
		_, err := repo.Get(ctx, "assessments", "nope")
		require.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		repo := &MongoRepo{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))
		err := repo.Insert(ctx, "assessments", rec(mt.T, `{"id":"1","processName":"Alpha","status":"Draft"}`))
		require.ErrorIs(mt, err, ErrDuplicateID)
	})

	mt.Run("replace unknown id", func(mt *mtest.T) {
		repo := &MongoRepo{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := repo.Replace(ctx, "assessments", "nope", rec(mt.T, `{"id":"nope"}`))
		require.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("replace", func(mt *mtest.T) {
		repo := &MongoRepo{client: mt.Client, db: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(mt, repo.Replace(ctx, "assessments", "1", rec(mt.T, `{"id":"1","status":"In Review"}`)))
	})
}
