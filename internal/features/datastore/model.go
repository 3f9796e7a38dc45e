package datastore

import (
	"go.mongodb.org/mongo-driver/bson"
)

// ResultDocument is a normalized result: ObjectIDs are hex strings at any depth.
type ResultDocument = map[string]any

type CollectionInfo struct {
	Name          string `json:"name"`
	DocumentCount int64  `json:"document_count"`
}

type CollectionDescription struct {
	Collection      string           `json:"collection"`
	DocumentCount   int64            `json:"document_count"`
	Fields          []string         `json:"fields"`
	SampleDocuments []ResultDocument `json:"sample_documents"`
}

// Request bodies are decoded from extended JSON so that key order (for $sort)
// and typed values such as {"$oid": ...} survive the round trip.

type FindRequest struct {
	Filter bson.D `bson:"filter,omitempty"`
	Limit  int64  `bson:"limit,omitempty" json:"limit" validate:"omitempty,min=1,max=1000"`
}

type AggregateRequest struct {
	Pipeline []bson.D `bson:"pipeline"`
}

type InsertRequest struct {
	Document  bson.D   `bson:"document,omitempty"`
	Documents []bson.D `bson:"documents,omitempty"`
}

type InsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	InsertedIDs   []string `json:"inserted_ids"`
}

type UpdateRequest struct {
	Filter bson.D `bson:"filter,omitempty"`
	Update bson.D `bson:"update"`
	Upsert bool   `bson:"upsert,omitempty"`
}

type UpdateResult struct {
	MatchedCount  int64  `json:"matched_count"`
	ModifiedCount int64  `json:"modified_count"`
	UpsertedID    string `json:"upserted_id,omitempty"`
}

type CountRequest struct {
	Filter bson.D `bson:"filter,omitempty"`
}

const (
	DefaultFindLimit  = 10
	DefaultSampleSize = 5
)
