package pipeline

import (
	"fmt"

	common_models "go-analytics/internal/common/models"
)

// Build turns a named intent and its parameters into a pipeline. It performs
// no I/O and returns equal pipelines for equal inputs.
func Build(intent string, params Params) (Pipeline, error) {
	t, ok := registry[intent]
	if !ok {
		return nil, common_models.NewError(common_models.KindUnknownIntent, "unknown intent %q", intent)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	stages, err := t.build(params)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", intent, err)
	}

	if t.DateField != "" && !params.DateRange.IsZero() {
		stages = append(Pipeline{params.DateRange.Match(t.DateField)}, stages...)
	}
	return stages, nil
}

// Chart intents feed the chart data sources. Every group emits "_id" and
// "value" so the adapter defaults line up.
func registerChartIntents() {
	register(Template{
		Name:        "chart-revenue-daily",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Daily revenue series for charting, oldest first",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef(orderDateField), Accumulators: []Accumulator{
					Sum("value", "total_amount"),
					Count("count"),
				}},
				Sort{Keys: []SortKey{{Field: "_id", Direction: Ascending}}},
				Limit{N: p.limitOr(10)},
			}, nil
		},
	})
	register(Template{
		Name:        "chart-customer-segments",
		Collection:  common_models.CollectionCustomers,
		Description: "Customers per segment for charting",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("segment"), Accumulators: []Accumulator{
					Count("value"),
					Avg("avg_spending", "total_spent"),
				}},
				ranked("value"),
			}, nil
		},
	})
	register(Template{
		Name:        "chart-top-menu-items",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Menu items by quantity sold for charting",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Unwind{Path: "items"},
				Group{Key: FieldRef("items.name"), Accumulators: []Accumulator{
					Sum("value", "items.quantity"),
					SumProduct("revenue", "items.quantity", "items.price"),
				}},
				ranked("value"),
				Limit{N: p.limitOr(10)},
			}, nil
		},
	})
	for _, c := range []struct{ name, field, label string }{
		{"chart-order-status", "status", "Orders per status for charting"},
		{"chart-order-types", "order_type", "Orders per order type for charting"},
	} {
		field := c.field
		register(Template{
			Name:        c.name,
			Collection:  common_models.CollectionOrders,
			DateField:   orderDateField,
			Description: c.label,
			build: func(p Params) (Pipeline, error) {
				return Pipeline{
					Group{Key: FieldRef(field), Accumulators: []Accumulator{
						Count("value"),
						Sum("revenue", "total_amount"),
					}},
					ranked("value"),
				}, nil
			},
		})
	}
}
