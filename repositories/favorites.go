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

type FavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(d *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{col: d.Collection(db.CollectionFavorites)}
}

// Add marks poemID as favorite for userCode. Adding twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userCode string, poemID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_code": userCode, "poem_id": poemID},
		bson.M{"$setOnInsert": bson.M{
			"user_code":  userCode,
			"poem_id":    poemID,
			"created_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Remove deletes a favorite. Returns ErrNotFound when there was none.
func (r *FavoriteRepository) Remove(ctx context.Context, userCode string, poemID primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_code": userCode, "poem_id": poemID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveByPoem drops every favorite pointing at poemID.
func (r *FavoriteRepository) RemoveByPoem(ctx context.Context, poemID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"poem_id": poemID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns a user's favorites newest first.
func (r *FavoriteRepository) List(ctx context.Context, userCode string, page, pageSize int) ([]models.Favorite, int64, error) {
	filter := bson.M{"user_code": userCode}
	page, pageSize = normalizePage(page, pageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page-1)*pageSize)).
		SetLimit(int64(pageSize)))
	if err != nil {
		return nil, 0, err
	}
	var out []models.Favorite
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FavoritedAmong returns the subset of poemIDs the user has favorited.
func (r *FavoriteRepository) FavoritedAmong(ctx context.Context, userCode string, poemIDs []primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	out := make(map[primitive.ObjectID]struct{})
	if len(poemIDs) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx,
		bson.M{"user_code": userCode, "poem_id": bson.M{"$in": poemIDs}},
		options.Find().SetProjection(bson.M{"poem_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var f models.Favorite
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		out[f.PoemID] = struct{}{}
	}
	return out, cur.Err()
}
