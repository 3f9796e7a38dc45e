package analytics

import (
	"sort"
	"strings"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/datastore"
	"go-analytics/internal/features/pipeline"
)

// IntentResult is the normalized output of one intent run.
type IntentResult struct {
	Intent     string                     `json:"intent"`
	Collection string                     `json:"collection"`
	Results    []datastore.ResultDocument `json:"results"`
	Cached     bool                       `json:"cached"`
	ExecutedAt time.Time                  `json:"executed_at"`
}

// ExportResult references an xlsx artifact written from an intent run.
type ExportResult struct {
	FileID      string   `json:"file_id"`
	Path        string   `json:"path"`
	StorageType string   `json:"storage_type"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
}

// RunIntentRequest carries intent parameters, either as a JSON body or as
// query parameters.
type RunIntentRequest struct {
	Limit      int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=1000"`
	DaysBack   int    `json:"days_back" query:"days_back" validate:"omitempty,min=1,max=3650"`
	Collection string `json:"collection" query:"collection"`
	StartDate  string `json:"start_date" query:"start" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// Params converts the request into builder parameters.
func (r RunIntentRequest) Params() pipeline.Params {
	p := pipeline.Params{Limit: r.Limit, DaysBack: r.DaysBack, Collection: r.Collection}
	if r.StartDate != "" || r.EndDate != "" {
		p.DateRange = &pipeline.DateRange{Start: r.StartDate, End: r.EndDate}
	}
	return p
}

// selector maps a query value of a grouped endpoint onto an intent. The
// first entry in order is the default.
type selector struct {
	param   string
	order   []string
	intents map[string]string
}

func (s selector) resolve(value string) (string, error) {
	if value == "" {
		value = s.order[0]
	}
	intent, ok := s.intents[value]
	if !ok {
		return "", common_models.NewError(common_models.KindInvalidRequest,
			"%s must be one of [%s], got %q", s.param, strings.Join(s.order, ", "), value)
	}
	return intent, nil
}

var (
	revenuePeriods = selector{
		param: "period",
		order: []string{"daily", "weekly", "monthly"},
		intents: map[string]string{
			"daily":   "revenue-daily",
			"weekly":  "revenue-weekly",
			"monthly": "revenue-monthly",
		},
	}
	customerAnalyses = selector{
		param: "analysis",
		order: []string{"segments", "top_spenders", "count", "loyalty"},
		intents: map[string]string{
			"segments":     "customer-segments",
			"top_spenders": "top-spenders",
			"count":        "customer-count",
			"loyalty":      "customer-loyalty",
		},
	}
	menuMetrics = selector{
		param: "metric",
		order: []string{"popularity", "revenue", "categories"},
		intents: map[string]string{
			"popularity": "menu-popularity",
			"revenue":    "menu-revenue",
			"categories": "menu-categories",
		},
	}
	operationMetrics = selector{
		param: "metric",
		order: []string{"order_status", "order_types", "payment_methods", "peak_days"},
		intents: map[string]string{
			"order_status":    "order-status",
			"order_types":     "order-types",
			"payment_methods": "payment-methods",
			"peak_days":       "peak-days",
		},
	}
)

const summaryIntent = "collection-summary"

// columnsOf returns the union of keys across rows, "_id" first and the rest sorted.
func columnsOf(rows []datastore.ResultDocument) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		if k != "_id" {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if seen["_id"] {
		cols = append([]string{"_id"}, cols...)
	}
	return cols
}
