package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	common_models "go-analytics/internal/common/models"
	"go-analytics/internal/config"
	"go-analytics/internal/features/pipeline"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type menuItem struct {
	ItemID   string  `bson:"item_id"`
	Name     string  `bson:"name"`
	Category string  `bson:"category"`
	Price    float64 `bson:"price"`
}

var menu = []menuItem{
	{"M001", "Margherita Pizza", "Mains", 12.50},
	{"M002", "Pepperoni Pizza", "Mains", 14.00},
	{"M003", "Caesar Salad", "Starters", 8.75},
	{"M004", "Garlic Bread", "Starters", 4.50},
	{"M005", "Spaghetti Carbonara", "Mains", 13.25},
	{"M006", "Tiramisu", "Desserts", 6.90},
	{"M007", "Panna Cotta", "Desserts", 6.20},
	{"M008", "Lemonade", "Drinks", 3.00},
	{"M009", "Espresso", "Drinks", 2.40},
	{"M010", "Mushroom Risotto", "Mains", 13.80},
}

var (
	segments       = []string{"new", "regular", "vip"}
	statuses       = []string{"completed", "completed", "completed", "cancelled", "pending"}
	orderTypes     = []string{"dine_in", "takeaway", "delivery"}
	paymentMethods = []string{"card", "cash", "mobile"}
)

func main() {
	days := flag.Int("days", 90, "days of order history to generate")
	customers := flag.Int("customers", 200, "number of customers")
	orders := flag.Int("orders", 2000, "number of orders")
	reset := flag.Bool("reset", false, "drop the collections before seeding")
	flag.Parse()
	if *days < 1 || *customers < 1 || *orders < 1 {
		log.Fatal("days, customers and orders must be positive")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if *reset {
		for _, name := range []string{common_models.CollectionOrders, common_models.CollectionCustomers, common_models.CollectionMenuItems} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("drop %s: %v", name, err)
			}
		}
		fmt.Println("Dropped existing collections")
	}

	fmt.Println("Seeding demo restaurant data...")

	menuDocs := make([]interface{}, len(menu))
	for i, m := range menu {
		menuDocs[i] = m
	}
	if _, err := db.Collection(common_models.CollectionMenuItems).InsertMany(ctx, menuDocs); err != nil {
		log.Fatalf("insert menu items: %v", err)
	}
	fmt.Printf("Inserted %d menu items\n", len(menuDocs))

	spent := make([]float64, *customers)
	counts := make([]int, *customers)

	now := time.Now().UTC()
	orderDocs := make([]interface{}, 0, *orders)
	for i := 0; i < *orders; i++ {
		customer := rng.Intn(*customers)
		date := now.AddDate(0, 0, -rng.Intn(*days)).Format(pipeline.DateLayout)

		n := 1 + rng.Intn(4)
		items := make(bson.A, 0, n)
		total := 0.0
		for j := 0; j < n; j++ {
			m := menu[rng.Intn(len(menu))]
			qty := 1 + rng.Intn(3)
			total += float64(qty) * m.Price
			items = append(items, bson.M{"item_id": m.ItemID, "quantity": qty, "price": m.Price})
		}

		spent[customer] += total
		counts[customer]++
		orderDocs = append(orderDocs, bson.M{
			"order_id":       fmt.Sprintf("O%05d", i+1),
			"customer_id":    customerID(customer),
			"order_date":     date,
			"items":          items,
			"total_amount":   total,
			"status":         statuses[rng.Intn(len(statuses))],
			"order_type":     orderTypes[rng.Intn(len(orderTypes))],
			"payment_method": paymentMethods[rng.Intn(len(paymentMethods))],
		})
	}
	if _, err := db.Collection(common_models.CollectionOrders).InsertMany(ctx, orderDocs); err != nil {
		log.Fatalf("insert orders: %v", err)
	}
	fmt.Printf("Inserted %d orders\n", len(orderDocs))

	customerDocs := make([]interface{}, *customers)
	for i := range customerDocs {
		customerDocs[i] = bson.M{
			"customer_id":    customerID(i),
			"name":           fmt.Sprintf("Customer %d", i+1),
			"email":          fmt.Sprintf("customer%d@example.com", i+1),
			"segment":        segments[rng.Intn(len(segments))],
			"order_count":    counts[i],
			"total_spent":    spent[i],
			"loyalty_points": int(spent[i] / 10),
		}
	}
	if _, err := db.Collection(common_models.CollectionCustomers).InsertMany(ctx, customerDocs); err != nil {
		log.Fatalf("insert customers: %v", err)
	}
	fmt.Printf("Inserted %d customers\n", len(customerDocs))

	fmt.Println("Seeding complete")
}

func customerID(i int) string {
	return fmt.Sprintf("C%04d", i+1)
}
