package pipeline

import (
	"time"

	common_models "go-analytics/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DateLayout is the storage format of order dates.
const DateLayout = "2006-01-02"

// DateRange bounds are inclusive YYYY-MM-DD dates; either may be empty.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (r *DateRange) IsZero() bool {
	return r == nil || (r.Start == "" && r.End == "")
}

func (r *DateRange) Validate() error {
	if r.IsZero() {
		return nil
	}
	var start, end time.Time
	var err error
	if r.Start != "" {
		if start, err = time.Parse(DateLayout, r.Start); err != nil {
			return common_models.NewError(common_models.KindInvalidRequest, "start date %q is not YYYY-MM-DD", r.Start)
		}
	}
	if r.End != "" {
		if end, err = time.Parse(DateLayout, r.End); err != nil {
			return common_models.NewError(common_models.KindInvalidRequest, "end date %q is not YYYY-MM-DD", r.End)
		}
	}
	if r.Start != "" && r.End != "" && start.After(end) {
		return common_models.NewError(common_models.KindInvalidRequest, "start date %s is after end date %s", r.Start, r.End)
	}
	return nil
}

// Match builds the leading filter on field. Dates are stored as YYYY-MM-DD
// strings so lexical comparison is chronological.
func (r *DateRange) Match(field string) Match {
	cond := bson.D{}
	if r.Start != "" {
		cond = append(cond, bson.E{Key: "$gte", Value: r.Start})
	}
	if r.End != "" {
		cond = append(cond, bson.E{Key: "$lte", Value: r.End})
	}
	return Match{Filter: bson.D{{Key: field, Value: cond}}}
}

// Params parameterizes a template. Zero values select the template default.
type Params struct {
	Limit      int        `json:"limit,omitempty"`
	DaysBack   int        `json:"days_back,omitempty"`
	Collection string     `json:"collection,omitempty"`
	DateRange  *DateRange `json:"date_range,omitempty"`
}

func (p Params) Validate() error {
	if p.Limit < 0 {
		return common_models.NewError(common_models.KindInvalidRequest, "limit must be a positive integer, got %d", p.Limit)
	}
	if p.DaysBack < 0 {
		return common_models.NewError(common_models.KindInvalidRequest, "days_back must be a positive integer, got %d", p.DaysBack)
	}
	return p.DateRange.Validate()
}

func (p Params) limitOr(def int) int64 {
	if p.Limit > 0 {
		return int64(p.Limit)
	}
	return int64(def)
}
