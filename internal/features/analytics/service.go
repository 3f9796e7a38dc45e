package analytics

import (
	"context"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/artifact"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"
	"go-analytics/internal/logger"

	"go.uber.org/zap"
)

type AnalyticsService interface {
	ListIntents() []pipeline.Template
	RunIntent(ctx context.Context, intent string, params pipeline.Params) (*IntentResult, error)

	Revenue(ctx context.Context, period string, params pipeline.Params) (*IntentResult, error)
	Customers(ctx context.Context, analysis string, params pipeline.Params) (*IntentResult, error)
	Menu(ctx context.Context, metric string, params pipeline.Params) (*IntentResult, error)
	Operations(ctx context.Context, metric string, params pipeline.Params) (*IntentResult, error)
	Summary(ctx context.Context, collection string) (*IntentResult, error)

	ExportIntent(ctx context.Context, intent string, params pipeline.Params) (*ExportResult, error)
}

type AnalyticsServiceImpl struct {
	Executor  datastore.Executor
	Store     datastore.DocumentStore
	Cache     ResultCache
	Artifacts artifact.ArtifactStore
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewAnalyticsService(
	executor datastore.Executor,
	store datastore.DocumentStore,
	cache ResultCache,
	artifacts artifact.ArtifactStore,
	log *zap.Logger,
) AnalyticsService {
	return &AnalyticsServiceImpl{
		Executor:  executor,
		Store:     store,
		Cache:     cache,
		Artifacts: artifacts,
		Logger:    log,
		Now:       time.Now,
	}
}

func (s *AnalyticsServiceImpl) ListIntents() []pipeline.Template {
	return pipeline.Intents()
}

// RunIntent builds the intent's pipeline, runs it and normalizes the result.
// Successful results are cached by intent and parameters.
func (s *AnalyticsServiceImpl) RunIntent(ctx context.Context, intent string, params pipeline.Params) (*IntentResult, error) {
	p, err := pipeline.Build(intent, params)
	if err != nil {
		return nil, err
	}
	tmpl, _ := pipeline.Lookup(intent)
	collection := tmpl.CollectionFor(params)

	key := CacheKey(intent, params)
	if results, ok := s.Cache.Get(ctx, key); ok {
		return &IntentResult{Intent: intent, Collection: collection, Results: results, Cached: true, ExecutedAt: s.Now().UTC()}, nil
	}

	start := time.Now()
	results, err := s.Executor.Execute(ctx, collection, p)
	if err != nil {
		logger.For(ctx, s.Logger).Warn("intent failed",
			zap.String(logger.FieldOperation, "run_intent"),
			zap.String("intent", intent),
			zap.String("collection", collection),
			zap.Error(err))
		return nil, err
	}
	s.Logger.Debug("intent executed",
		zap.String(logger.FieldOperation, "run_intent"),
		zap.String("intent", intent),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	s.Cache.Set(ctx, key, results)
	return &IntentResult{Intent: intent, Collection: collection, Results: results, ExecutedAt: s.Now().UTC()}, nil
}

func (s *AnalyticsServiceImpl) runSelected(ctx context.Context, sel selector, value string, params pipeline.Params) (*IntentResult, error) {
	intent, err := sel.resolve(value)
	if err != nil {
		return nil, err
	}
	return s.RunIntent(ctx, intent, params)
}

func (s *AnalyticsServiceImpl) Revenue(ctx context.Context, period string, params pipeline.Params) (*IntentResult, error) {
	return s.runSelected(ctx, revenuePeriods, period, params)
}

func (s *AnalyticsServiceImpl) Customers(ctx context.Context, analysis string, params pipeline.Params) (*IntentResult, error) {
	return s.runSelected(ctx, customerAnalyses, analysis, params)
}

func (s *AnalyticsServiceImpl) Menu(ctx context.Context, metric string, params pipeline.Params) (*IntentResult, error) {
	return s.runSelected(ctx, menuMetrics, metric, params)
}

func (s *AnalyticsServiceImpl) Operations(ctx context.Context, metric string, params pipeline.Params) (*IntentResult, error) {
	return s.runSelected(ctx, operationMetrics, metric, params)
}

// Summary aggregates the main numeric field of a known collection. Any
// other collection only reports its document count.
func (s *AnalyticsServiceImpl) Summary(ctx context.Context, collection string) (*IntentResult, error) {
	if err := datastore.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if pipeline.HasSummary(collection) {
		return s.RunIntent(ctx, summaryIntent, pipeline.Params{Collection: collection})
	}

	count, err := s.Store.CountDocuments(ctx, collection, nil)
	if err != nil {
		return nil, datastore.ClassifyError(err, "counting %s", collection)
	}
	return &IntentResult{
		Intent:     summaryIntent,
		Collection: collection,
		Results:    []datastore.ResultDocument{{"total_documents": count}},
		ExecutedAt: s.Now().UTC(),
	}, nil
}

// ExportIntent runs an intent and stores its rows as an xlsx artifact.
func (s *AnalyticsServiceImpl) ExportIntent(ctx context.Context, intent string, params pipeline.Params) (*ExportResult, error) {
	res, err := s.RunIntent(ctx, intent, params)
	if err != nil {
		return nil, err
	}
	if len(res.Results) == 0 {
		return nil, common_models.NewError(common_models.KindNoValidData, "intent %s returned no rows to export", intent)
	}

	columns := columnsOf(res.Results)
	data, err := WriteWorkbook(res.Results, columns)
	if err != nil {
		return nil, common_models.WrapError(common_models.KindRenderError, err, "writing workbook")
	}

	name, path, err := artifact.PutUnique(ctx, s.Artifacts, "export_"+intent, ".xlsx", data, artifact.ContentTypeXLSX, s.Now())
	if err != nil {
		return nil, common_models.WrapError(common_models.KindRenderError, err, "saving export")
	}

	logger.For(ctx, s.Logger).Info("intent exported",
		zap.String(logger.FieldOperation, "export_intent"),
		zap.String("intent", intent),
		zap.String("file_id", name),
		zap.Int("rows", len(res.Results)))

	return &ExportResult{
		FileID:      name,
		Path:        path,
		StorageType: s.Artifacts.Type(),
		Rows:        len(res.Results),
		Columns:     columns,
	}, nil
}
