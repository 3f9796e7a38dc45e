package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/features/datastore"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Adapt turns normalized results into chart points. Explicit fields win over
// the source defaults; the resolved field names are returned with the points.
func Adapt(source string, results []datastore.ResultDocument, xField, yField string, limit int) (string, string, []DataPoint, error) {
	src, ok := LookupSource(source)
	if !ok {
		return "", "", nil, common_models.NewError(common_models.KindUnknownIntent, "unknown data source %q", source)
	}
	if xField == "" {
		xField = src.XField
	}
	if yField == "" {
		yField = src.YField
	}
	if len(results) == 0 {
		return xField, yField, nil, common_models.NewError(common_models.KindNoValidData, "no data found for %s", source)
	}

	first := results[0]
	for _, f := range []string{xField, yField} {
		if _, ok := first[f]; !ok {
			return xField, yField, nil, common_models.NewError(common_models.KindFieldNotFound,
				"field %q not found, available fields: %s", f, strings.Join(sortedKeys(first), ", "))
		}
	}

	points := make([]DataPoint, 0, len(results))
	for _, doc := range results {
		xv, yv := doc[xField], doc[yField]
		if xv == nil || yv == nil {
			continue
		}
		points = append(points, DataPoint{
			X:    xValue(xv),
			Y:    yValue(yv),
			Meta: meta(doc, xField, yField),
		})
	}

	if limit > 0 && len(points) > limit {
		points = points[:limit]
	}
	if len(points) == 0 {
		return xField, yField, nil, common_models.NewError(common_models.KindNoValidData, "no valid data points in %d results", len(results))
	}
	return xField, yField, points, nil
}

func sortedKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func meta(doc map[string]any, xField, yField string) map[string]any {
	if len(doc) <= 2 {
		return nil
	}
	m := make(map[string]any, len(doc)-2)
	for k, v := range doc {
		if k != xField && k != yField {
			m[k] = v
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// yValue coerces a result value to a finite float. Anything that is not a
// number, or a string holding one, plots as 0.
func yValue(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// xValue keeps strings, turns numbers into float64 and formats dates.
func xValue(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case time.Time:
		return formatTime(t)
	case primitive.DateTime:
		return formatTime(t.Time())
	default:
		return fmt.Sprint(t)
	}
}

func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// Label renders a point's x value for axis ticks and slice labels.
func (p DataPoint) Label() string {
	switch t := p.X.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
