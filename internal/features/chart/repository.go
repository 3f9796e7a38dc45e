package chart

import (
	"context"
	"errors"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChartRepository stores artifact records. Records are append only.
type ChartRepository interface {
	Create(ctx context.Context, artifact *ChartArtifact) error
	GetByFileID(ctx context.Context, fileID string) (*ChartArtifact, error)
	ListRecent(ctx context.Context, limit int64) ([]ChartArtifact, error)
}

type ChartRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewChartRepository(mongodb *database.MongodbDB) ChartRepository {
	return &ChartRepositoryImpl{
		Collection: mongodb.DB.Collection("charts"),
	}
}

func (r *ChartRepositoryImpl) Create(ctx context.Context, artifact *ChartArtifact) error {
	artifact.ID = primitive.NewObjectID()
	_, err := r.Collection.InsertOne(ctx, artifact)
	return err
}

func (r *ChartRepositoryImpl) GetByFileID(ctx context.Context, fileID string) (*ChartArtifact, error) {
	var artifact ChartArtifact
	err := r.Collection.FindOne(ctx, bson.M{"file_id": fileID}).Decode(&artifact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common_models.NewError(common_models.KindNotFound, "chart %s not found", fileID)
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *ChartRepositoryImpl) ListRecent(ctx context.Context, limit int64) ([]ChartArtifact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	charts := []ChartArtifact{}
	if err := cursor.All(ctx, &charts); err != nil {
		return nil, err
	}
	return charts, nil
}
