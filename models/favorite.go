package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite marks a poem saved by a user
// Collection: favorites (unique on user_code + poem_id)
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserCode  string             `bson:"user_code" json:"user_code"`
	PoemID    primitive.ObjectID `bson:"poem_id" json:"poem_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
