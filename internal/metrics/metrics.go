// Package metrics holds the prometheus collectors for aggregation and chart rendering.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_aggregations_total",
			Help: "Total number of aggregation executions by collection and outcome",
		},
		[]string{"collection", "outcome"},
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_aggregation_duration_seconds",
			Help:    "Duration of aggregation executions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection"},
	)

	ChartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_chart_renders_total",
			Help: "Total number of chart renders by chart type and outcome",
		},
		[]string{"chart_type", "outcome"},
	)

	ChartRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_chart_render_duration_seconds",
			Help:    "Time spent holding the rendering backend",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	RenderQueueWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_chart_render_queue_wait_seconds",
			Help:    "Time spent waiting for the rendering backend",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_lookups_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordAggregation records one aggregation attempt.
func RecordAggregation(collection string, err error, elapsed time.Duration) {
	AggregationsTotal.WithLabelValues(collection, outcome(err)).Inc()
	AggregationDuration.WithLabelValues(collection).Observe(elapsed.Seconds())
}

// RecordRender records one chart render attempt.
func RecordRender(chartType string, err error) {
	ChartRendersTotal.WithLabelValues(chartType, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
