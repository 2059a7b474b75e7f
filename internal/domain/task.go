package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task ids are integers assigned by the store's counter, so the JSON
// contract stays stable regardless of the backing database.
type Task struct {
	ID        int64              `bson:"_id"        json:"id"`
	Title     string             `bson:"title"      json:"title"`
	Done      bool               `bson:"done"       json:"done"`
	UserID    primitive.ObjectID `bson:"user_id"    json:"userId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
