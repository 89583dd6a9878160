package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"poemas-versos/db"
	"poemas-versos/models"
)

type GalleryRepository struct {
	col *mongo.Collection
}

func NewGalleryRepository(d *mongo.Database) *GalleryRepository {
	return &GalleryRepository{col: d.Collection(db.CollectionGallery)}
}

func (r *GalleryRepository) Insert(ctx context.Context, item *models.GalleryItem) (primitive.ObjectID, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	item.ID = id
	return id, nil
}

type ListGalleryOptions struct {
	Page     int
	PageSize int
	Kind     models.GalleryKind
	Category string
}

func (r *GalleryRepository) List(ctx context.Context, opt ListGalleryOptions) ([]models.GalleryItem, int64, error) {
	filter := bson.M{}
	if opt.Kind != "" {
		filter["kind"] = opt.Kind
	}
	if opt.Category != "" {
		filter["category"] = opt.Category
	}
	page, pageSize := normalizePage(opt.Page, opt.PageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page-1)*pageSize)).
		SetLimit(int64(pageSize)))
	if err != nil {
		return nil, 0, err
	}
	var out []models.GalleryItem
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
