package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GalleryKind string

const (
	GalleryKindImage GalleryKind = "image"
	GalleryKindVideo GalleryKind = "video"
)

func (k GalleryKind) Valid() bool {
	return k == GalleryKindImage || k == GalleryKindVideo
}

// GalleryItem is an image or video shown in the multimedia gallery
// Collection: gallery
type GalleryItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	Kind      GalleryKind        `bson:"kind" json:"kind"`
	Title     string             `bson:"title" json:"title"`
	URL       string             `bson:"url" json:"url"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
}
