package chart

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChartType string

const (
	ChartTypeAuto          ChartType = "auto"
	ChartTypeBar           ChartType = "bar"
	ChartTypeLine          ChartType = "line"
	ChartTypePie           ChartType = "pie"
	ChartTypeHorizontalBar ChartType = "horizontal_bar"
)

// NormalizeChartType maps unknown types onto bar.
func NormalizeChartType(t ChartType) ChartType {
	switch t {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeHorizontalBar:
		return t
	default:
		return ChartTypeBar
	}
}

// DataSource binds a chart source name to the intent that feeds it and to
// its presentation defaults.
type DataSource struct {
	Name      string    `json:"name"`
	Intent    string    `json:"intent"`
	XField    string    `json:"x_field"`
	YField    string    `json:"y_field"`
	Title     string    `json:"title"` // "{limit}" is replaced with the request limit
	ChartType ChartType `json:"chart_type"`
}

var dataSources = map[string]DataSource{
	"revenue_daily":     {Name: "revenue_daily", Intent: "chart-revenue-daily", XField: "_id", YField: "value", Title: "Daily Revenue Trends", ChartType: ChartTypeLine},
	"customer_segments": {Name: "customer_segments", Intent: "chart-customer-segments", XField: "_id", YField: "value", Title: "Customer Segments Distribution", ChartType: ChartTypePie},
	"top_menu_items":    {Name: "top_menu_items", Intent: "chart-top-menu-items", XField: "_id", YField: "value", Title: "Top {limit} Menu Items", ChartType: ChartTypeHorizontalBar},
	"order_status":      {Name: "order_status", Intent: "chart-order-status", XField: "_id", YField: "value", Title: "Order Status Distribution", ChartType: ChartTypePie},
	"order_types":       {Name: "order_types", Intent: "chart-order-types", XField: "_id", YField: "value", Title: "Order Types Distribution", ChartType: ChartTypePie},
}

func LookupSource(name string) (DataSource, bool) {
	src, ok := dataSources[name]
	return src, ok
}

// Sources returns the data-source table, sorted by name.
func Sources() []DataSource {
	names := make([]string, 0, len(dataSources))
	for name := range dataSources {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]DataSource, 0, len(names))
	for _, name := range names {
		out = append(out, dataSources[name])
	}
	return out
}

// ResolveTitle prefers an explicit title and fills the limit placeholder.
func (s DataSource) ResolveTitle(title string, limit int) string {
	if title == "" {
		title = s.Title
	}
	return strings.ReplaceAll(title, "{limit}", strconv.Itoa(limit))
}

// ResolveChartType prefers an explicit type; "auto" and empty select the default.
func (s DataSource) ResolveChartType(requested ChartType) ChartType {
	if requested == "" || requested == ChartTypeAuto {
		return s.ChartType
	}
	return NormalizeChartType(requested)
}

// DataPoint is one plotted value. X is a string or a float64.
type DataPoint struct {
	X    any            `json:"x"`
	Y    float64        `json:"y"`
	Meta map[string]any `json:"meta,omitempty"`
}

type RenderInput struct {
	Points    []DataPoint
	ChartType ChartType
	Title     string
	XLabel    string
	YLabel    string
}

// RenderedChart is a drawn chart that has been stored.
type RenderedChart struct {
	FileID      string
	Path        string
	ChartType   ChartType
	StorageType string
}

// ChartArtifact is the persisted record of a rendered chart. It is written
// once and never updated.
type ChartArtifact struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileID      string             `bson:"file_id" json:"file_id"`
	ChartType   ChartType          `bson:"chart_type" json:"chart_type"`
	Title       string             `bson:"title" json:"title"`
	DataSource  string             `bson:"data_source" json:"data_source"`
	PointCount  int                `bson:"point_count" json:"point_count"`
	Path        string             `bson:"path" json:"path"`
	StorageType string             `bson:"storage_type" json:"storage_type"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

const DefaultLimit = 10

// GenerateChartRequest asks for a chart of one data source.
type GenerateChartRequest struct {
	DataSource string    `json:"data_source" validate:"required"`
	ChartType  ChartType `json:"chart_type"`
	Title      string    `json:"title"`
	XField     string    `json:"x_field"`
	YField     string    `json:"y_field"`
	Limit      int       `json:"limit" validate:"omitempty,min=1,max=1000"`
	StartDate  string    `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string    `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ChartResult is the outcome of GenerateChart.
type ChartResult struct {
	Artifact    *ChartArtifact
	Points      []DataPoint
	DataSummary []map[string]any
}

const summarySize = 5
