package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email"         json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Name         string             `bson:"name"          json:"name"`
	Provider     string             `bson:"provider"      json:"provider"`    // "local" | "google"
	ExternalID   string             `bson:"external_id,omitempty" json:"-"`   // Google sub
	CreatedAt    time.Time          `bson:"created_at"    json:"createdAt"`
}
