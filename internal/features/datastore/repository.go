package datastore

import (
	"context"

	"go-analytics/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentStore is the raw document database. Results are not normalized.
type DocumentStore interface {
	Find(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error)
	Aggregate(ctx context.Context, collection string, pipeline any) ([]bson.M, error)
	InsertOne(ctx context.Context, collection string, document any) (any, error)
	InsertMany(ctx context.Context, collection string, documents []any) ([]any, error)
	UpdateMany(ctx context.Context, collection string, filter, update any, upsert bool) (*mongo.UpdateResult, error)
	ListCollections(ctx context.Context) ([]string, error)
	CountDocuments(ctx context.Context, collection string, filter any) (int64, error)
}

type MongoDocumentStore struct {
	DB *mongo.Database
}

func NewDocumentStore(mongodb *database.MongodbDB) DocumentStore {
	return &MongoDocumentStore{DB: mongodb.DB}
}

func orEmpty(filter any) any {
	if filter == nil {
		return bson.D{}
	}
	if d, ok := filter.(bson.D); ok && d == nil {
		return bson.D{}
	}
	return filter
}

func (r *MongoDocumentStore) Find(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.DB.Collection(collection).Find(ctx, orEmpty(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *MongoDocumentStore) Aggregate(ctx context.Context, collection string, pipeline any) ([]bson.M, error) {
	cursor, err := r.DB.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *MongoDocumentStore) InsertOne(ctx context.Context, collection string, document any) (any, error) {
	res, err := r.DB.Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (r *MongoDocumentStore) InsertMany(ctx context.Context, collection string, documents []any) ([]any, error) {
	res, err := r.DB.Collection(collection).InsertMany(ctx, documents)
	if err != nil {
		return nil, err
	}
	return res.InsertedIDs, nil
}

func (r *MongoDocumentStore) UpdateMany(ctx context.Context, collection string, filter, update any, upsert bool) (*mongo.UpdateResult, error) {
	return r.DB.Collection(collection).UpdateMany(ctx, orEmpty(filter), update, options.Update().SetUpsert(upsert))
}

func (r *MongoDocumentStore) ListCollections(ctx context.Context) ([]string, error) {
	return r.DB.ListCollectionNames(ctx, bson.D{})
}

func (r *MongoDocumentStore) CountDocuments(ctx context.Context, collection string, filter any) (int64, error) {
	return r.DB.Collection(collection).CountDocuments(ctx, orEmpty(filter))
}
