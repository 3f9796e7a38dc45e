package datastore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockDocumentStore records calls and returns canned results.
type MockDocumentStore struct {
	Docs        []bson.M
	Collections []string
	Counts      map[string]int64
	UpdateRes   *mongo.UpdateResult
	Err         error

	AggregateCalls int
	WriteCalls     int
	LastFilter     any
	LastLimit      int64
	LastPipeline   any
	Inserted       []any
}

func (m *MockDocumentStore) Find(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error) {
	m.LastFilter = filter
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs, nil
}

func (m *MockDocumentStore) Aggregate(ctx context.Context, collection string, pipeline any) ([]bson.M, error) {
	m.AggregateCalls++
	m.LastPipeline = pipeline
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Docs, nil
}

func (m *MockDocumentStore) InsertOne(ctx context.Context, collection string, document any) (any, error) {
	m.WriteCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	m.Inserted = append(m.Inserted, document)
	return "id-1", nil
}

func (m *MockDocumentStore) InsertMany(ctx context.Context, collection string, documents []any) ([]any, error) {
	m.WriteCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]any, len(documents))
	for i := range documents {
		ids[i] = i + 1
	}
	m.Inserted = append(m.Inserted, documents...)
	return ids, nil
}

func (m *MockDocumentStore) UpdateMany(ctx context.Context, collection string, filter, update any, upsert bool) (*mongo.UpdateResult, error) {
	m.WriteCalls++
	m.LastFilter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	return m.UpdateRes, nil
}

func (m *MockDocumentStore) ListCollections(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Collections, nil
}

func (m *MockDocumentStore) CountDocuments(ctx context.Context, collection string, filter any) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Counts[collection], nil
}
