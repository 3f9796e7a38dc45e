package snapshot

import (
	"context"
	"time"

	"go-analytics/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SnapshotRepository interface {
	CreateRun(ctx context.Context, run *SnapshotRun) error
	UpdateRun(ctx context.Context, run *SnapshotRun) error
	ListRuns(ctx context.Context, limit int) ([]SnapshotRun, error)
}

type SnapshotRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSnapshotRepository(db *database.MongodbDB) SnapshotRepository {
	return &SnapshotRepositoryImpl{
		collection: db.DB.Collection("snapshot_runs"),
	}
}

func (r *SnapshotRepositoryImpl) CreateRun(ctx context.Context, run *SnapshotRun) error {
	run.ID = primitive.NewObjectID()
	run.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, run)
	return err
}

func (r *SnapshotRepositoryImpl) UpdateRun(ctx context.Context, run *SnapshotRun) error {
	filter := bson.M{"_id": run.ID}
	update := bson.M{"$set": run}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

func (r *SnapshotRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]SnapshotRun, error) {
	var runs []SnapshotRun

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	if runs == nil {
		runs = []SnapshotRun{}
	}

	return runs, nil
}
