package datastore

import (
	"context"
	"sort"
	"strings"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DatastoreService exposes the document store directly, next to the
// fixed analytical intents.
type DatastoreService interface {
	ListCollections(ctx context.Context) ([]CollectionInfo, error)
	DescribeCollection(ctx context.Context, collection string, sampleSize int) (*CollectionDescription, error)
	Find(ctx context.Context, collection string, req FindRequest) ([]ResultDocument, error)
	Aggregate(ctx context.Context, collection string, req AggregateRequest) ([]ResultDocument, error)
	Insert(ctx context.Context, collection string, req InsertRequest) (*InsertResult, error)
	Update(ctx context.Context, collection string, req UpdateRequest) (*UpdateResult, error)
	Count(ctx context.Context, collection string, filter bson.D) (int64, error)
}

type DatastoreServiceImpl struct {
	Store    DocumentStore
	Executor Executor
	Logger   *zap.Logger
}

func NewDatastoreService(store DocumentStore, executor Executor, log *zap.Logger) DatastoreService {
	return &DatastoreServiceImpl{
		Store:    store,
		Executor: executor,
		Logger:   log,
	}
}

// ValidateCollectionName rejects names the server would refuse or that
// address internal collections.
func ValidateCollectionName(name string) error {
	switch {
	case name == "":
		return common_models.NewError(common_models.KindInvalidRequest, "collection name is required")
	case strings.ContainsAny(name, "$\x00"):
		return common_models.NewError(common_models.KindInvalidRequest, "collection name %q contains an illegal character", name)
	case strings.HasPrefix(name, "system."):
		return common_models.NewError(common_models.KindInvalidRequest, "collection %q is reserved", name)
	}
	return nil
}

func (s *DatastoreServiceImpl) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	names, err := s.Store.ListCollections(ctx)
	if err != nil {
		return nil, classifyRequest(err, "list collections")
	}
	sort.Strings(names)

	infos := make([]CollectionInfo, 0, len(names))
	for _, name := range names {
		count, err := s.Store.CountDocuments(ctx, name, nil)
		if err != nil {
			return nil, classifyRequest(err, "count %s", name)
		}
		infos = append(infos, CollectionInfo{Name: name, DocumentCount: count})
	}
	return infos, nil
}

func (s *DatastoreServiceImpl) DescribeCollection(ctx context.Context, collection string, sampleSize int) (*CollectionDescription, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	docs, err := s.Store.Find(ctx, collection, nil, int64(sampleSize))
	if err != nil {
		return nil, classifyRequest(err, "sample %s", collection)
	}
	count, err := s.Store.CountDocuments(ctx, collection, nil)
	if err != nil {
		return nil, classifyRequest(err, "count %s", collection)
	}

	samples := NormalizeAll(docs)
	seen := map[string]struct{}{}
	for _, d := range samples {
		for k := range d {
			seen[k] = struct{}{}
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	return &CollectionDescription{
		Collection:      collection,
		DocumentCount:   count,
		Fields:          fields,
		SampleDocuments: samples,
	}, nil
}

func (s *DatastoreServiceImpl) Find(ctx context.Context, collection string, req FindRequest) ([]ResultDocument, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultFindLimit
	}

	docs, err := s.Store.Find(ctx, collection, req.Filter, limit)
	if err != nil {
		return nil, classifyRequest(err, "find on %s", collection)
	}
	return NormalizeAll(docs), nil
}

func (s *DatastoreServiceImpl) Aggregate(ctx context.Context, collection string, req AggregateRequest) ([]ResultDocument, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	return s.Executor.ExecuteRaw(ctx, collection, req.Pipeline)
}

func (s *DatastoreServiceImpl) Insert(ctx context.Context, collection string, req InsertRequest) (*InsertResult, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	// Empty payloads are rejected here so that nothing reaches the store
	switch {
	case req.Documents != nil && req.Document != nil:
		return nil, common_models.NewError(common_models.KindInvalidRequest, "send either document or documents, not both")
	case req.Documents != nil:
		if len(req.Documents) == 0 {
			return nil, common_models.NewError(common_models.KindInvalidRequest, "documents list is empty")
		}
		docs := make([]any, 0, len(req.Documents))
		for i, d := range req.Documents {
			if len(d) == 0 {
				return nil, common_models.NewError(common_models.KindInvalidRequest, "document %d is empty", i)
			}
			docs = append(docs, d)
		}
		ids, err := s.Store.InsertMany(ctx, collection, docs)
		if err != nil {
			return nil, classifyRequest(err, "insert into %s", collection)
		}
		result := &InsertResult{InsertedCount: len(ids), InsertedIDs: make([]string, 0, len(ids))}
		for _, id := range ids {
			result.InsertedIDs = append(result.InsertedIDs, idString(id))
		}
		s.logWrite(ctx, "insert_many", collection, result.InsertedCount)
		return result, nil
	default:
		if len(req.Document) == 0 {
			return nil, common_models.NewError(common_models.KindInvalidRequest, "document is empty")
		}
		id, err := s.Store.InsertOne(ctx, collection, req.Document)
		if err != nil {
			return nil, classifyRequest(err, "insert into %s", collection)
		}
		s.logWrite(ctx, "insert_one", collection, 1)
		return &InsertResult{InsertedCount: 1, InsertedIDs: []string{idString(id)}}, nil
	}
}

func (s *DatastoreServiceImpl) Update(ctx context.Context, collection string, req UpdateRequest) (*UpdateResult, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if len(req.Update) == 0 {
		return nil, common_models.NewError(common_models.KindInvalidRequest, "update is empty")
	}
	for _, e := range req.Update {
		if !strings.HasPrefix(e.Key, "$") {
			return nil, common_models.NewError(common_models.KindInvalidRequest, "update key %q is not an update operator such as $set", e.Key)
		}
	}

	res, err := s.Store.UpdateMany(ctx, collection, req.Filter, req.Update, req.Upsert)
	if err != nil {
		return nil, classifyRequest(err, "update on %s", collection)
	}

	out := &UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}
	if res.UpsertedID != nil {
		out.UpsertedID = idString(res.UpsertedID)
	}
	s.logWrite(ctx, "update_many", collection, int(res.ModifiedCount))
	return out, nil
}

func (s *DatastoreServiceImpl) Count(ctx context.Context, collection string, filter bson.D) (int64, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return 0, err
	}
	n, err := s.Store.CountDocuments(ctx, collection, filter)
	if err != nil {
		return 0, classifyRequest(err, "count %s", collection)
	}
	return n, nil
}

func (s *DatastoreServiceImpl) logWrite(ctx context.Context, op, collection string, n int) {
	logger.For(ctx, s.Logger).Info("documents written",
		zap.String(logger.FieldOperation, op),
		zap.String("collection", collection),
		zap.Int("count", n))
}
