package analytics

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"
	"go-analytics/internal/features/artifact"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type mockStore struct {
	docs  []bson.M
	count int64
	err   error

	aggregateCalls int
	countCalls     int
	lastCollection string
	lastPipeline   any
}

func (m *mockStore) Find(ctx context.Context, collection string, filter any, limit int64) ([]bson.M, error) {
	return m.docs, m.err
}

func (m *mockStore) Aggregate(ctx context.Context, collection string, p any) ([]bson.M, error) {
	m.aggregateCalls++
	m.lastCollection = collection
	m.lastPipeline = p
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockStore) InsertOne(ctx context.Context, collection string, document any) (any, error) {
	return nil, errors.New("not used")
}

func (m *mockStore) InsertMany(ctx context.Context, collection string, documents []any) ([]any, error) {
	return nil, errors.New("not used")
}

func (m *mockStore) UpdateMany(ctx context.Context, collection string, filter, update any, upsert bool) (*mongo.UpdateResult, error) {
	return nil, errors.New("not used")
}

func (m *mockStore) ListCollections(ctx context.Context) ([]string, error) {
	return nil, errors.New("not used")
}

func (m *mockStore) CountDocuments(ctx context.Context, collection string, filter any) (int64, error) {
	m.countCalls++
	m.lastCollection = collection
	return m.count, m.err
}

type memCache struct {
	entries map[string][]datastore.ResultDocument
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]datastore.ResultDocument{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]datastore.ResultDocument, bool) {
	r, ok := c.entries[key]
	return r, ok
}

func (c *memCache) Set(ctx context.Context, key string, results []datastore.ResultDocument) {
	c.sets++
	c.entries[key] = results
}

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, store *mockStore, cache ResultCache) (*AnalyticsServiceImpl, string) {
	t.Helper()
	dir := t.TempDir()
	artifacts, err := artifact.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("artifact store: %v", err)
	}
	return &AnalyticsServiceImpl{
		Executor:  datastore.NewExecutor(store, &config.Config{BreakerMaxFailures: 100}, zap.NewNop()),
		Store:     store,
		Cache:     cache,
		Artifacts: artifacts,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return fixedNow },
	}, dir
}

func TestRunIntentNormalizesResults(t *testing.T) {
	id := primitive.NewObjectID()
	store := &mockStore{docs: []bson.M{
		{"_id": "2024-03-09", "total_revenue": 420.5, "order_count": int32(7), "ref": id},
	}}
	svc, _ := newTestService(t, store, NoopCache{})

	res, err := svc.RunIntent(context.Background(), "revenue-daily", pipeline.Params{DaysBack: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Collection != "orders" || res.Intent != "revenue-daily" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Results) != 1 || res.Results[0]["ref"] != id.Hex() {
		t.Errorf("object ids should be hex strings: %v", res.Results)
	}
	if !res.ExecutedAt.Equal(fixedNow) {
		t.Errorf("executed_at = %v", res.ExecutedAt)
	}
}

func TestRunIntentUsesCache(t *testing.T) {
	store := &mockStore{docs: []bson.M{{"_id": "vip", "count": int32(3)}}}
	cache := newMemCache()
	svc, _ := newTestService(t, store, cache)
	params := pipeline.Params{Limit: 5}

	first, err := svc.RunIntent(context.Background(), "customer-segments", params)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.RunIntent(context.Background(), "customer-segments", params)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if store.aggregateCalls != 1 {
		t.Errorf("aggregate calls = %d, want 1", store.aggregateCalls)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v/%v", first.Cached, second.Cached)
	}

	if _, err := svc.RunIntent(context.Background(), "customer-segments", pipeline.Params{Limit: 6}); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if store.aggregateCalls != 2 {
		t.Errorf("different params must miss the cache")
	}
}

func TestRunIntentFailuresAreNotCached(t *testing.T) {
	store := &mockStore{err: mongo.CommandError{Code: 2, Message: "bad stage"}}
	cache := newMemCache()
	svc, _ := newTestService(t, store, cache)

	_, err := svc.RunIntent(context.Background(), "order-status", pipeline.Params{})
	if !errors.Is(err, common_models.ErrInvalidPipeline) {
		t.Fatalf("expected InvalidPipeline, got %v", err)
	}
	if cache.sets != 0 {
		t.Errorf("failures should not be cached")
	}
}

func TestRunIntentUnknown(t *testing.T) {
	store := &mockStore{}
	svc, _ := newTestService(t, store, NoopCache{})

	_, err := svc.RunIntent(context.Background(), "forecast-sales", pipeline.Params{})
	if !errors.Is(err, common_models.ErrUnknownIntent) {
		t.Fatalf("expected UnknownIntent, got %v", err)
	}
	if store.aggregateCalls != 0 {
		t.Errorf("no query should run for an unknown intent")
	}
}

func TestSelectors(t *testing.T) {
	tests := []struct {
		name     string
		run      func(s *AnalyticsServiceImpl) (*IntentResult, error)
		intent   string
		collName string
	}{
		{"revenue default", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Revenue(context.Background(), "", pipeline.Params{})
		}, "revenue-daily", "orders"},
		{"revenue monthly", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Revenue(context.Background(), "monthly", pipeline.Params{})
		}, "revenue-monthly", "orders"},
		{"top spenders", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Customers(context.Background(), "top_spenders", pipeline.Params{})
		}, "top-spenders", "customers"},
		{"menu categories", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Menu(context.Background(), "categories", pipeline.Params{})
		}, "menu-categories", "menu_items"},
		{"operations default", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Operations(context.Background(), "", pipeline.Params{})
		}, "order-status", "orders"},
		{"peak days", func(s *AnalyticsServiceImpl) (*IntentResult, error) {
			return s.Operations(context.Background(), "peak_days", pipeline.Params{})
		}, "peak-days", "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{docs: []bson.M{{"_id": "x", "count": 1}}}
			svc, _ := newTestService(t, store, NoopCache{})
			res, err := tt.run(svc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Intent != tt.intent || store.lastCollection != tt.collName {
				t.Errorf("ran %s on %s, want %s on %s", res.Intent, store.lastCollection, tt.intent, tt.collName)
			}
		})
	}
}

func TestSelectorRejectsUnknownValue(t *testing.T) {
	store := &mockStore{}
	svc, _ := newTestService(t, store, NoopCache{})

	_, err := svc.Revenue(context.Background(), "hourly", pipeline.Params{})
	if !errors.Is(err, common_models.ErrInvalidRequest) {
		t.Fatalf("expected InvalidRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "daily, weekly, monthly") {
		t.Errorf("error should list accepted values: %v", err)
	}
	if store.aggregateCalls != 0 {
		t.Errorf("no query should run")
	}
}

func TestSummary(t *testing.T) {
	t.Run("known collection aggregates", func(t *testing.T) {
		store := &mockStore{docs: []bson.M{{"total_orders": int32(12), "total_revenue": 300.0}}}
		svc, _ := newTestService(t, store, NoopCache{})

		res, err := svc.Summary(context.Background(), "orders")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.aggregateCalls != 1 || store.countCalls != 0 {
			t.Errorf("aggregate=%d count=%d", store.aggregateCalls, store.countCalls)
		}
		if res.Results[0]["total_orders"] != int32(12) {
			t.Errorf("results = %v", res.Results)
		}
	})

	t.Run("other collection counts", func(t *testing.T) {
		store := &mockStore{count: 42}
		svc, _ := newTestService(t, store, NoopCache{})

		res, err := svc.Summary(context.Background(), "reservations")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.aggregateCalls != 0 || store.countCalls != 1 {
			t.Errorf("aggregate=%d count=%d", store.aggregateCalls, store.countCalls)
		}
		if res.Results[0]["total_documents"] != int64(42) || res.Collection != "reservations" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("bad name", func(t *testing.T) {
		svc, _ := newTestService(t, &mockStore{}, NoopCache{})
		if _, err := svc.Summary(context.Background(), "$orders"); !errors.Is(err, common_models.ErrInvalidRequest) {
			t.Errorf("expected InvalidRequest, got %v", err)
		}
	})
}

func TestExportIntentWritesWorkbook(t *testing.T) {
	store := &mockStore{docs: []bson.M{
		{"_id": "pending", "count": int32(4), "revenue": 120.0},
		{"_id": "delivered", "count": int32(9), "revenue": 410.0},
	}}
	svc, dir := newTestService(t, store, NoopCache{})

	out, err := svc.ExportIntent(context.Background(), "order-status", pipeline.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.FileID, "export_order-status_20240310_093000_") || !strings.HasSuffix(out.FileID, ".xlsx") {
		t.Errorf("file id = %q", out.FileID)
	}
	if out.Rows != 2 || strings.Join(out.Columns, ",") != "_id,count,revenue" {
		t.Errorf("export = %+v", out)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(out.Path, dir) {
		t.Errorf("path %q outside store dir", out.Path)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "_id" || rows[2][0] != "delivered" || rows[2][1] != "9" {
		t.Errorf("sheet rows = %v", rows)
	}
}

func TestExportIntentEmpty(t *testing.T) {
	svc, dir := newTestService(t, &mockStore{}, NoopCache{})

	_, err := svc.ExportIntent(context.Background(), "order-types", pipeline.Params{})
	if !errors.Is(err, common_models.ErrNoValidData) {
		t.Fatalf("expected NoValidData, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no file should be written")
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("revenue-daily", pipeline.Params{DaysBack: 7, DateRange: &pipeline.DateRange{Start: "2024-01-01"}})
	b := CacheKey("revenue-daily", pipeline.Params{DaysBack: 7, DateRange: &pipeline.DateRange{Start: "2024-01-01"}})
	c := CacheKey("revenue-daily", pipeline.Params{DaysBack: 8, DateRange: &pipeline.DateRange{Start: "2024-01-01"}})
	d := CacheKey("revenue-weekly", pipeline.Params{DaysBack: 7, DateRange: &pipeline.DateRange{Start: "2024-01-01"}})

	if a != b {
		t.Errorf("equal params must give equal keys: %q %q", a, b)
	}
	if a == c || a == d {
		t.Errorf("keys should differ by params and intent")
	}
	if !strings.HasPrefix(a, cacheKeyPrefix+"revenue-daily:") {
		t.Errorf("key = %q", a)
	}
}

func TestNewResultCacheWithoutRedis(t *testing.T) {
	cache := NewResultCache(&config.Config{}, zap.NewNop())
	if _, ok := cache.(NoopCache); !ok {
		t.Fatalf("expected NoopCache, got %T", cache)
	}
	cache.Set(context.Background(), "k", []datastore.ResultDocument{{"a": 1}})
	if _, ok := cache.Get(context.Background(), "k"); ok {
		t.Errorf("noop cache should never hit")
	}
}

func TestColumnsOf(t *testing.T) {
	rows := []datastore.ResultDocument{
		{"total": 1, "_id": "a"},
		{"avg": 2.0, "_id": "b"},
	}
	if got := strings.Join(columnsOf(rows), ","); got != "_id,avg,total" {
		t.Errorf("columns = %s", got)
	}
	if got := columnsOf([]datastore.ResultDocument{{"b": 1, "a": 2}}); strings.Join(got, ",") != "a,b" {
		t.Errorf("columns without _id = %v", got)
	}
}
