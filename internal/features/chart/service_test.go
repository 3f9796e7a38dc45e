package chart

import (
	"context"
	"errors"
	"testing"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type mockExecutor struct {
	results        []datastore.ResultDocument
	err            error
	calls          int
	lastCollection string
	lastPipeline   pipeline.Pipeline
}

func (m *mockExecutor) Execute(ctx context.Context, collection string, p pipeline.Pipeline) ([]datastore.ResultDocument, error) {
	m.calls++
	m.lastCollection = collection
	m.lastPipeline = p
	return m.results, m.err
}

func (m *mockExecutor) ExecuteRaw(ctx context.Context, collection string, stages []bson.D) ([]datastore.ResultDocument, error) {
	m.calls++
	return m.results, m.err
}

type mockRenderer struct {
	err   error
	calls int
	last  RenderInput
}

func (m *mockRenderer) Render(ctx context.Context, in RenderInput) (*RenderedChart, error) {
	m.calls++
	m.last = in
	if m.err != nil {
		return nil, m.err
	}
	return &RenderedChart{
		FileID:      "chart_20240101_120000_0a1b2c3d.png",
		Path:        "/tmp/charts/chart_20240101_120000_0a1b2c3d.png",
		ChartType:   NormalizeChartType(in.ChartType),
		StorageType: "local",
	}, nil
}

type mockChartRepo struct {
	created   []*ChartArtifact
	createErr error
}

func (m *mockChartRepo) Create(ctx context.Context, a *ChartArtifact) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, a)
	return nil
}

func (m *mockChartRepo) GetByFileID(ctx context.Context, fileID string) (*ChartArtifact, error) {
	for _, a := range m.created {
		if a.FileID == fileID {
			return a, nil
		}
	}
	return nil, common_models.NewError(common_models.KindNotFound, "chart %s not found", fileID)
}

func (m *mockChartRepo) ListRecent(ctx context.Context, limit int64) ([]ChartArtifact, error) {
	out := []ChartArtifact{}
	for i := len(m.created) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, *m.created[i])
	}
	return out, nil
}

func newTestService(exec *mockExecutor, r *mockRenderer, repo *mockChartRepo) *ChartServiceImpl {
	return &ChartServiceImpl{
		ChartRepo: repo,
		Executor:  exec,
		Renderer:  r,
		Logger:    zap.NewNop(),
	}
}

func TestGenerateChartRevenueDaily(t *testing.T) {
	exec := &mockExecutor{results: []datastore.ResultDocument{
		{"_id": "2024-01-01", "value": 100.0, "count": int32(2)},
		{"_id": "2024-01-02", "value": 250.0, "count": int32(4)},
	}}
	r := &mockRenderer{}
	repo := &mockChartRepo{}
	svc := newTestService(exec, r, repo)

	res, err := svc.GenerateChart(context.Background(), GenerateChartRequest{DataSource: "revenue_daily"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.lastCollection != "orders" {
		t.Errorf("collection = %q, want orders", exec.lastCollection)
	}
	if r.last.ChartType != ChartTypeLine || r.last.Title != "Daily Revenue Trends" {
		t.Errorf("render input = %+v", r.last)
	}
	if r.last.XLabel != "_id" || r.last.YLabel != "value" {
		t.Errorf("labels = %s/%s", r.last.XLabel, r.last.YLabel)
	}
	if res.Artifact.PointCount != 2 || res.Artifact.DataSource != "revenue_daily" {
		t.Errorf("artifact = %+v", res.Artifact)
	}
	if len(res.DataSummary) != 2 {
		t.Errorf("summary = %d rows", len(res.DataSummary))
	}
	if len(repo.created) != 1 || repo.created[0].FileID != res.Artifact.FileID {
		t.Errorf("artifact record not stored")
	}
}

func TestGenerateChartAppliesDateRangeAndLimit(t *testing.T) {
	exec := &mockExecutor{results: []datastore.ResultDocument{{"_id": "Pizza", "value": 9}}}
	svc := newTestService(exec, &mockRenderer{}, &mockChartRepo{})

	res, err := svc.GenerateChart(context.Background(), GenerateChartRequest{
		DataSource: "top_menu_items",
		Limit:      3,
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := exec.lastPipeline.Kinds()
	if len(kinds) == 0 || kinds[0] != pipeline.StageMatch {
		t.Errorf("date range should lead the pipeline, got %v", kinds)
	}
	if kinds[len(kinds)-1] != pipeline.StageLimit {
		t.Errorf("pipeline should end with the limit, got %v", kinds)
	}
	if res.Artifact.Title != "Top 3 Menu Items" {
		t.Errorf("title = %q", res.Artifact.Title)
	}
}

func TestGenerateChartSummaryCapped(t *testing.T) {
	results := make([]datastore.ResultDocument, 0, 8)
	for i := 0; i < 8; i++ {
		results = append(results, datastore.ResultDocument{"_id": string(rune('a' + i)), "value": float64(i + 1)})
	}
	svc := newTestService(&mockExecutor{results: results}, &mockRenderer{}, &mockChartRepo{})

	res, err := svc.GenerateChart(context.Background(), GenerateChartRequest{DataSource: "order_status", ChartType: ChartTypeBar})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.DataSummary) != summarySize {
		t.Errorf("summary = %d rows, want %d", len(res.DataSummary), summarySize)
	}
	if res.Artifact.ChartType != ChartTypeBar {
		t.Errorf("chart type = %s", res.Artifact.ChartType)
	}
}

func TestGenerateChartFailures(t *testing.T) {
	unavailable := common_models.NewError(common_models.KindDataSourceUnavailable, "connection refused")

	tests := []struct {
		name       string
		req        GenerateChartRequest
		exec       *mockExecutor
		renderErr  error
		want       error
		wantQuery  bool
		wantRender bool
	}{
		{
			name: "missing data source",
			req:  GenerateChartRequest{},
			exec: &mockExecutor{},
			want: common_models.ErrInvalidRequest,
		},
		{
			name: "bad date",
			req:  GenerateChartRequest{DataSource: "revenue_daily", StartDate: "01/02/2024"},
			exec: &mockExecutor{},
			want: common_models.ErrInvalidRequest,
		},
		{
			name: "unknown source",
			req:  GenerateChartRequest{DataSource: "weather"},
			exec: &mockExecutor{},
			want: common_models.ErrUnknownIntent,
		},
		{
			name:      "store down",
			req:       GenerateChartRequest{DataSource: "order_types"},
			exec:      &mockExecutor{err: unavailable},
			want:      common_models.ErrDataSourceUnavailable,
			wantQuery: true,
		},
		{
			name:      "no rows",
			req:       GenerateChartRequest{DataSource: "order_types"},
			exec:      &mockExecutor{},
			want:      common_models.ErrNoValidData,
			wantQuery: true,
		},
		{
			name:      "missing field",
			req:       GenerateChartRequest{DataSource: "order_types", YField: "total"},
			exec:      &mockExecutor{results: []datastore.ResultDocument{{"_id": "dine_in", "value": 3}}},
			want:      common_models.ErrFieldNotFound,
			wantQuery: true,
		},
		{
			name:       "degenerate pie",
			req:        GenerateChartRequest{DataSource: "order_types"},
			exec:       &mockExecutor{results: []datastore.ResultDocument{{"_id": "dine_in", "value": 0}}},
			renderErr:  common_models.NewError(common_models.KindDegenerateChart, "all pie values are zero"),
			want:       common_models.ErrDegenerateChart,
			wantQuery:  true,
			wantRender: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockRenderer{err: tt.renderErr}
			repo := &mockChartRepo{}
			svc := newTestService(tt.exec, r, repo)

			_, err := svc.GenerateChart(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if (tt.exec.calls > 0) != tt.wantQuery {
				t.Errorf("query executed = %v, want %v", tt.exec.calls > 0, tt.wantQuery)
			}
			if (r.calls > 0) != tt.wantRender {
				t.Errorf("render called = %v, want %v", r.calls > 0, tt.wantRender)
			}
			if len(repo.created) != 0 {
				t.Errorf("no record should be stored on failure")
			}
		})
	}
}

func TestGenerateChartSurvivesRecordFailure(t *testing.T) {
	exec := &mockExecutor{results: []datastore.ResultDocument{{"_id": "vip", "value": 4}}}
	repo := &mockChartRepo{createErr: errors.New("write concern failed")}
	svc := newTestService(exec, &mockRenderer{}, repo)

	res, err := svc.GenerateChart(context.Background(), GenerateChartRequest{DataSource: "customer_segments"})
	if err != nil {
		t.Fatalf("a lost record should not fail the request: %v", err)
	}
	if res.Artifact.FileID == "" {
		t.Errorf("artifact should still be returned")
	}
}

func TestGetChartRejectsBadNames(t *testing.T) {
	svc := newTestService(&mockExecutor{}, &mockRenderer{}, &mockChartRepo{})

	if _, err := svc.GetChart(context.Background(), "../etc/passwd"); !errors.Is(err, common_models.ErrInvalidRequest) {
		t.Errorf("expected InvalidRequest, got %v", err)
	}
	if _, err := svc.GetChart(context.Background(), "chart_20240101_120000_0a1b2c3d.png"); !errors.Is(err, common_models.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
