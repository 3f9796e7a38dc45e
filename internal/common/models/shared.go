package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// Log is a persisted service log line written by the logger's DB core.
type Log struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AppId        string             `bson:"app_id" json:"app_id"`
	LogLevelId   int                `bson:"log_level_id" json:"log_level_id"`
	Message      string             `bson:"message" json:"message"`
	RequestID    string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Operation    string             `bson:"operation,omitempty" json:"operation,omitempty"`
	Caller       string             `bson:"caller,omitempty" json:"caller,omitempty"`
	CreatedOnUtc time.Time          `bson:"created_on_utc" json:"created_on_utc"`
}

// Collections of the transactional dataset.
const (
	CollectionOrders    = "orders"
	CollectionCustomers = "customers"
	CollectionMenuItems = "menu_items"
)
