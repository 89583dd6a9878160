package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PoemStatus is the moderation state of a poem. Only approved poems are public.
type PoemStatus string

const (
	PoemStatusPending  PoemStatus = "pending"
	PoemStatusApproved PoemStatus = "approved"
	PoemStatusRejected PoemStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s PoemStatus) Valid() bool {
	switch s {
	case PoemStatusPending, PoemStatusApproved, PoemStatusRejected:
		return true
	}
	return false
}

// PoemSource records how a poem entered the catalog.
type PoemSource string

const (
	PoemSourceSeed PoemSource = "seed"
	PoemSourceUser PoemSource = "user"
	PoemSourceFeed PoemSource = "feed"
	PoemSourceAI   PoemSource = "ai"
)

// Poem represents a poem document
// Collection: poems
type Poem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	Slug        string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body" json:"body"`
	Author      string             `bson:"author,omitempty" json:"author,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Status      PoemStatus         `bson:"status" json:"status"`
	Likes       int64              `bson:"likes" json:"likes"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Source      PoemSource         `bson:"source" json:"source"`
	SourceLink  string             `bson:"source_link,omitempty" json:"source_link,omitempty"`
	SubmittedBy string             `bson:"submitted_by,omitempty" json:"submitted_by,omitempty"`
	ModeratedAt *time.Time         `bson:"moderated_at,omitempty" json:"moderated_at,omitempty"`
	ModeratedBy string             `bson:"moderated_by,omitempty" json:"moderated_by,omitempty"`
}

// DisplayImage resolves the image shown for the poem.
// Order: image_url, image (static path), category default, "".
func (p Poem) DisplayImage(categoryDefault string) string {
	if v := strings.TrimSpace(p.ImageURL); v != "" {
		return v
	}
	if v := strings.TrimSpace(p.Image); v != "" {
		return v
	}
	return strings.TrimSpace(categoryDefault)
}
