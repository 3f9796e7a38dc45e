package datastore

import (
	"context"
	"errors"
	"testing"

	common_models "go-analytics/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoDocumentStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregate reads every batch", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		ns := mt.DB.Name() + ".orders"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "2024-01-01"}, {Key: "value", Value: 120.5}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "_id", Value: "2024-01-02"}, {Key: "value", Value: 80.0}}),
		)

		docs, err := store.Aggregate(context.Background(), "orders", mongo.Pipeline{})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 2 || docs[1]["_id"] != "2024-01-02" {
			mt.Errorf("unexpected docs: %v", docs)
		}
	})

	mt.Run("aggregate command error", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    40324,
			Name:    "Location40324",
			Message: "Unrecognized pipeline stage name: '$bogus'",
		}))

		_, err := store.Aggregate(context.Background(), "orders", mongo.Pipeline{{{Key: "$bogus", Value: 1}}})
		if err == nil {
			mt.Fatal("expected an error")
		}
		if got := ClassifyError(err, "aggregate"); !errors.Is(got, common_models.ErrInvalidPipeline) {
			mt.Errorf("classified as %v", got)
		}
	})

	mt.Run("find", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".customers", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}, {Key: "segment", Value: "vip"}}))

		docs, err := store.Find(context.Background(), "customers", bson.D{{Key: "segment", Value: "vip"}}, 5)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 || docs[0]["_id"] != id {
			mt.Errorf("unexpected docs: %v", docs)
		}
	})

	mt.Run("insert one", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := store.InsertOne(context.Background(), "orders", bson.D{{Key: "order_id", Value: "ORD1"}})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if _, ok := id.(primitive.ObjectID); !ok {
			mt.Errorf("expected a generated ObjectID, got %T", id)
		}
	})

	mt.Run("update many", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 3},
			bson.E{Key: "nModified", Value: 2},
		))

		res, err := store.UpdateMany(context.Background(), "customers",
			bson.D{{Key: "segment", Value: "regular"}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "loyalty_points", Value: 10}}}},
			false)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if res.MatchedCount != 3 || res.ModifiedCount != 2 {
			mt.Errorf("unexpected result %+v", res)
		}
	})

	mt.Run("count", func(mt *mtest.T) {
		store := &MongoDocumentStore{DB: mt.DB}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".orders", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(12)}}))

		n, err := store.CountDocuments(context.Background(), "orders", nil)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if n != 12 {
			mt.Errorf("count = %d, want 12", n)
		}
	})
}
