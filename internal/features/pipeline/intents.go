package pipeline

import (
	"sort"

	common_models "go-analytics/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
)

const orderDateField = "order_date"

// Template maps one named intent to its stage sequence.
type Template struct {
	Name        string `json:"name"`
	Collection  string `json:"collection,omitempty"` // empty: taken from Params.Collection
	DateField   string `json:"date_field,omitempty"` // empty: date ranges do not apply
	Description string `json:"description"`

	build func(p Params) (Pipeline, error)
}

// CollectionFor resolves the collection the intent runs against.
func (t Template) CollectionFor(p Params) string {
	if t.Collection != "" {
		return t.Collection
	}
	return p.Collection
}

var registry = map[string]Template{}

func register(t Template) {
	registry[t.Name] = t
}

// Lookup returns the template registered for intent.
func Lookup(intent string) (Template, bool) {
	t, ok := registry[intent]
	return t, ok
}

// Intents lists the catalogue sorted by name.
func Intents() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ranked sorts by metric descending and breaks ties on the group key.
func ranked(metric string) Sort {
	return Sort{Keys: []SortKey{{Field: metric, Direction: Descending}, {Field: "_id", Direction: Ascending}}}
}

func byPeriodDesc() Sort {
	return Sort{Keys: []SortKey{{Field: "_id", Direction: Descending}}}
}

// monthPrefix buckets a YYYY-MM-DD string field by its YYYY-MM prefix.
func monthPrefix(field string) bson.D {
	return bson.D{{Key: "$substr", Value: bson.A{FieldRef(field), 0, 7}}}
}

func init() {
	// Revenue by period
	register(Template{
		Name:        "revenue-daily",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Revenue, order count and average order value per order date, newest first",
		build: func(p Params) (Pipeline, error) {
			limit := int64(7)
			if p.DaysBack > 0 {
				limit = int64(p.DaysBack)
			}
			return Pipeline{
				Group{Key: FieldRef(orderDateField), Accumulators: []Accumulator{
					Sum("total_revenue", "total_amount"),
					Count("order_count"),
					Avg("avg_order_value", "total_amount"),
				}},
				byPeriodDesc(),
				Limit{N: limit},
			}, nil
		},
	})
	register(Template{
		Name:        "revenue-weekly",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Revenue per week. Weekly currently buckets by calendar month (YYYY-MM), last 8 buckets",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: monthPrefix(orderDateField), Accumulators: []Accumulator{
					Sum("total_revenue", "total_amount"),
					Count("order_count"),
					Avg("avg_order_value", "total_amount"),
				}},
				byPeriodDesc(),
				Limit{N: 8},
			}, nil
		},
	})
	register(Template{
		Name:        "revenue-monthly",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Revenue per calendar month (YYYY-MM), newest first",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: monthPrefix(orderDateField), Accumulators: []Accumulator{
					Sum("total_revenue", "total_amount"),
					Count("order_count"),
					Avg("avg_order_value", "total_amount"),
				}},
				byPeriodDesc(),
			}, nil
		},
	})

	// Customers
	register(Template{
		Name:        "customer-segments",
		Collection:  common_models.CollectionCustomers,
		Description: "Customer count and spending statistics per segment",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("segment"), Accumulators: []Accumulator{
					Count("customer_count"),
					Sum("total_spending", "total_spent"),
					Avg("avg_spending", "total_spent"),
					Max("max_spending", "total_spent"),
					Min("min_spending", "total_spent"),
					Avg("avg_loyalty_points", "loyalty_points"),
				}},
				ranked("total_spending"),
			}, nil
		},
	})
	register(Template{
		Name:        "customer-count",
		Collection:  common_models.CollectionCustomers,
		Description: "Number of customers per segment",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("segment"), Accumulators: []Accumulator{Count("customer_count")}},
				ranked("customer_count"),
			}, nil
		},
	})
	register(Template{
		Name:        "customer-loyalty",
		Collection:  common_models.CollectionCustomers,
		Description: "Average order count and spending per segment",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("segment"), Accumulators: []Accumulator{
					Avg("avg_order_count", "order_count"),
					Avg("avg_total_spent", "total_spent"),
					Count("customer_count"),
				}},
				ranked("avg_total_spent"),
			}, nil
		},
	})
	register(Template{
		Name:        "top-spenders",
		Collection:  common_models.CollectionCustomers,
		Description: "Customers ranked by total spending",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				ranked("total_spent"),
				Limit{N: p.limitOr(10)},
				Project{Fields: bson.D{
					{Key: "customer_id", Value: 1},
					{Key: "name", Value: 1},
					{Key: "email", Value: 1},
					{Key: "segment", Value: 1},
					{Key: "total_spent", Value: 1},
					{Key: "loyalty_points", Value: 1},
					{Key: "order_count", Value: 1},
				}},
			}, nil
		},
	})

	// Menu
	register(Template{
		Name:        "menu-popularity",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Menu items ranked by quantity ordered",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Unwind{Path: "items"},
				Group{Key: FieldRef("items.item_id"), Accumulators: []Accumulator{
					Sum("total_quantity", "items.quantity"),
					SumProduct("total_revenue", "items.quantity", "items.price"),
					Count("times_ordered"),
				}},
				ranked("total_quantity"),
				Limit{N: p.limitOr(10)},
			}, nil
		},
	})
	register(Template{
		Name:        "menu-revenue",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Menu items ranked by revenue (quantity x price)",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Unwind{Path: "items"},
				Group{Key: FieldRef("items.item_id"), Accumulators: []Accumulator{
					SumProduct("total_revenue", "items.quantity", "items.price"),
					Sum("total_quantity", "items.quantity"),
				}},
				ranked("total_revenue"),
				Limit{N: p.limitOr(10)},
			}, nil
		},
	})
	register(Template{
		Name:        "menu-categories",
		Collection:  common_models.CollectionMenuItems,
		Description: "Menu item count and price statistics per category",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("category"), Accumulators: []Accumulator{
					Count("item_count"),
					Avg("avg_price", "price"),
					Min("min_price", "price"),
					Max("max_price", "price"),
				}},
				ranked("item_count"),
			}, nil
		},
	})

	// Operations
	register(Template{
		Name:        "order-status",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Order count and revenue per order status",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("status"), Accumulators: []Accumulator{
					Count("order_count"),
					Sum("total_revenue", "total_amount"),
					Avg("avg_order_value", "total_amount"),
				}},
				ranked("order_count"),
			}, nil
		},
	})
	register(Template{
		Name:        "order-types",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Order count, revenue and order value range per order type",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("order_type"), Accumulators: []Accumulator{
					Count("order_count"),
					Sum("total_revenue", "total_amount"),
					Avg("avg_order_value", "total_amount"),
					Min("min_order_value", "total_amount"),
					Max("max_order_value", "total_amount"),
				}},
				ranked("total_revenue"),
			}, nil
		},
	})
	register(Template{
		Name:        "payment-methods",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Order count and revenue per payment method",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef("payment_method"), Accumulators: []Accumulator{
					Count("order_count"),
					Sum("total_revenue", "total_amount"),
					Avg("avg_order_value", "total_amount"),
				}},
				ranked("order_count"),
			}, nil
		},
	})
	register(Template{
		Name:        "peak-days",
		Collection:  common_models.CollectionOrders,
		DateField:   orderDateField,
		Description: "Busiest order dates by order count",
		build: func(p Params) (Pipeline, error) {
			return Pipeline{
				Group{Key: FieldRef(orderDateField), Accumulators: []Accumulator{
					Count("daily_orders"),
					Sum("daily_revenue", "total_amount"),
				}},
				ranked("daily_orders"),
				Limit{N: p.limitOr(10)},
			}, nil
		},
	})

	// Summary
	register(Template{
		Name:        "collection-summary",
		Description: "Count, sum, average, min and max of the collection's main numeric field",
		build: func(p Params) (Pipeline, error) {
			accs, ok := summaries[p.Collection]
			if !ok {
				return nil, common_models.NewError(common_models.KindInvalidRequest, "no summary template for collection %q", p.Collection)
			}
			return Pipeline{
				Group{Key: nil, Accumulators: accs},
				Project{Fields: bson.D{{Key: "_id", Value: 0}}},
			}, nil
		},
	})

	registerChartIntents()
}

var summaries = map[string][]Accumulator{
	common_models.CollectionOrders: {
		Count("total_orders"),
		Sum("total_revenue", "total_amount"),
		Avg("avg_order_value", "total_amount"),
		Min("min_order_value", "total_amount"),
		Max("max_order_value", "total_amount"),
	},
	common_models.CollectionCustomers: {
		Count("total_customers"),
		Sum("total_spent", "total_spent"),
		Avg("avg_spent", "total_spent"),
		Min("min_spent", "total_spent"),
		Max("max_spent", "total_spent"),
		Avg("avg_loyalty_points", "loyalty_points"),
	},
	common_models.CollectionMenuItems: {
		Count("total_items"),
		Sum("total_price", "price"),
		Avg("avg_price", "price"),
		Min("min_price", "price"),
		Max("max_price", "price"),
	},
}

// HasSummary reports whether collection has a summary template.
func HasSummary(collection string) bool {
	_, ok := summaries[collection]
	return ok
}
