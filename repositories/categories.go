package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"poemas-versos/db"
	"poemas-versos/models"
)

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(d *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: d.Collection(db.CollectionCategories)}
}

// UpsertByName upserts a category document identified by its name.
func (r *CategoryRepository) UpsertByName(ctx context.Context, c *models.Category) (*mongo.UpdateResult, error) {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	filter := bson.M{"name": c.Name}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": c.CreatedAt,
		},
		"$set": bson.M{
			"updated_at":    c.UpdatedAt,
			"name":          c.Name,
			"slug":          c.Slug,
			"description":   c.Description,
			"default_image": c.DefaultImage,
			"sort_order":    c.SortOrder,
		},
	}
	opts := options.Update().SetUpsert(true)
	return r.col.UpdateOne(ctx, filter, update, opts)
}

// GetByName finds a category by its exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&c); err != nil {
		return nil, translateErr(err)
	}
	return &c, nil
}

// List returns every category ordered by sort_order, then name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "sort_order", Value: 1},
		{Key: "name", Value: 1},
	}))
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultImages maps category name to its default image.
func (r *CategoryRepository) DefaultImages(ctx context.Context) (map[string]string, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(items))
	for _, c := range items {
		out[c.Name] = c.DefaultImage
	}
	return out, nil
}
