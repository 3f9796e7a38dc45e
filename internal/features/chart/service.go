package chart

import (
	"context"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/artifact"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"
	"go-analytics/internal/logger"
	"go-analytics/internal/metrics"
	"go-analytics/internal/validation"

	"go.uber.org/zap"
)

type ChartService interface {
	GenerateChart(ctx context.Context, req GenerateChartRequest) (*ChartResult, error)
	ListCharts(ctx context.Context, limit int64) ([]ChartArtifact, error)
	GetChart(ctx context.Context, fileID string) (*ChartArtifact, error)
	GetChartImage(ctx context.Context, fileID string) ([]byte, string, error)
}

type ChartServiceImpl struct {
	ChartRepo ChartRepository
	Executor  datastore.Executor
	Renderer  Renderer
	Store     artifact.ArtifactStore
	Logger    *zap.Logger
}

func NewChartService(chartRepo ChartRepository, executor datastore.Executor, renderer Renderer, store artifact.ArtifactStore, log *zap.Logger) ChartService {
	return &ChartServiceImpl{
		ChartRepo: chartRepo,
		Executor:  executor,
		Renderer:  renderer,
		Store:     store,
		Logger:    log,
	}
}

func (s *ChartServiceImpl) GenerateChart(ctx context.Context, req GenerateChartRequest) (*ChartResult, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	src, ok := LookupSource(req.DataSource)
	if !ok {
		return nil, common_models.NewError(common_models.KindUnknownIntent, "unknown data source %q", req.DataSource)
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	params := pipeline.Params{Limit: limit}
	if req.StartDate != "" || req.EndDate != "" {
		params.DateRange = &pipeline.DateRange{Start: req.StartDate, End: req.EndDate}
	}
	p, err := pipeline.Build(src.Intent, params)
	if err != nil {
		return nil, err
	}
	tmpl, _ := pipeline.Lookup(src.Intent)

	results, err := s.Executor.Execute(ctx, tmpl.CollectionFor(params), p)
	if err != nil {
		return nil, err
	}

	xField, yField, points, err := Adapt(src.Name, results, req.XField, req.YField, limit)
	if err != nil {
		return nil, err
	}

	chartType := src.ResolveChartType(req.ChartType)
	title := src.ResolveTitle(req.Title, limit)

	rendered, err := s.Renderer.Render(ctx, RenderInput{
		Points:    points,
		ChartType: chartType,
		Title:     title,
		XLabel:    xField,
		YLabel:    yField,
	})
	metrics.RecordRender(string(chartType), err)
	if err != nil {
		logger.For(ctx, s.Logger).Warn("chart render failed",
			zap.String(logger.FieldOperation, "generate_chart"),
			zap.String("data_source", src.Name),
			zap.String("chart_type", string(chartType)),
			zap.Error(err))
		return nil, err
	}

	record := &ChartArtifact{
		FileID:      rendered.FileID,
		ChartType:   rendered.ChartType,
		Title:       title,
		DataSource:  src.Name,
		PointCount:  len(points),
		Path:        rendered.Path,
		StorageType: rendered.StorageType,
		CreatedAt:   time.Now().UTC(),
	}
	// The image is already stored; a lost record only hides it from listings
	if err := s.ChartRepo.Create(ctx, record); err != nil {
		logger.For(ctx, s.Logger).Error("failed to record chart artifact",
			zap.String(logger.FieldOperation, "generate_chart"),
			zap.String("file_id", rendered.FileID),
			zap.Error(err))
	}

	logger.For(ctx, s.Logger).Info("chart generated",
		zap.String(logger.FieldOperation, "generate_chart"),
		zap.String("file_id", rendered.FileID),
		zap.String("data_source", src.Name),
		zap.Int("points", len(points)))

	summary := make([]map[string]any, 0, summarySize)
	for i := 0; i < len(results) && i < summarySize; i++ {
		summary = append(summary, results[i])
	}
	return &ChartResult{Artifact: record, Points: points, DataSummary: summary}, nil
}

func (s *ChartServiceImpl) ListCharts(ctx context.Context, limit int64) ([]ChartArtifact, error) {
	return s.ChartRepo.ListRecent(ctx, limit)
}

func (s *ChartServiceImpl) GetChart(ctx context.Context, fileID string) (*ChartArtifact, error) {
	if err := artifact.ValidateName(fileID); err != nil {
		return nil, err
	}
	return s.ChartRepo.GetByFileID(ctx, fileID)
}

func (s *ChartServiceImpl) GetChartImage(ctx context.Context, fileID string) ([]byte, string, error) {
	return s.Store.Get(ctx, fileID)
}
