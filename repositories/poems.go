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

type PoemRepository struct {
	col *mongo.Collection
}

func NewPoemRepository(d *mongo.Database) *PoemRepository {
	return &PoemRepository{col: d.Collection(db.CollectionPoems)}
}

// ListIDsByCategory enumerates the ids of approved poems filed under category.
// Only _id is projected.
func (r *PoemRepository) ListIDsByCategory(ctx context.Context, category string) ([]string, error) {
	filter := bson.M{"category": category, "status": models.PoemStatusApproved}
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID.Hex())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByIDs point-reads approved poems by hex id for the sampler. Malformed ids
// and poems that are no longer approved are omitted. Result order is whatever
// the server returns.
func (r *PoemRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Poem, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return r.findIn(ctx, oids, bson.M{"status": models.PoemStatusApproved})
}

// FindByObjectIDs returns poems whose _id is in ids.
func (r *PoemRepository) FindByObjectIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Poem, error) {
	return r.findIn(ctx, ids, bson.M{})
}

// findIn 은 filter 에 _id $in 조건을 더해 조회한다.
func (r *PoemRepository) findIn(ctx context.Context, ids []primitive.ObjectID, filter bson.M) ([]models.Poem, error) {
	if len(ids) == 0 {
		return []models.Poem{}, nil
	}
	filter["_id"] = bson.M{"$in": ids}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]models.Poem, 0, len(ids))
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

type ListPoemsOptions struct {
	Page     int
	PageSize int
	Category string
	// Status nil means any status (admin listing).
	Status *models.PoemStatus
}

// List returns poems with filters and pagination, sorted by created_at desc
func (r *PoemRepository) List(ctx context.Context, opt ListPoemsOptions) ([]models.Poem, int64, error) {
	filter := bson.M{}
	if opt.Category != "" {
		filter["category"] = opt.Category
	}
	if opt.Status != nil {
		filter["status"] = *opt.Status
	}

	page, pageSize := normalizePage(opt.Page, opt.PageSize)
	skip := int64((page - 1) * pageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSkip(skip).SetLimit(int64(pageSize)).SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var results []models.Poem
	for cur.Next(ctx) {
		var p models.Poem
		if err := cur.Decode(&p); err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// Search runs a $text query over approved poems ordered by relevance.
func (r *PoemRepository) Search(ctx context.Context, query string, page, pageSize int) ([]models.Poem, int64, error) {
	filter := bson.M{
		"$text":  bson.M{"$search": query},
		"status": models.PoemStatusApproved,
	}
	page, pageSize = normalizePage(page, pageSize)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	score := bson.M{"score": bson.M{"$meta": "textScore"}}
	findOpts := options.Find().
		SetProjection(score).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	var results []models.Poem
	if err := cur.All(ctx, &results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// FindByID returns a poem by its ObjectID
func (r *PoemRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poem, error) {
	var p models.Poem
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

// Insert inserts a new poem document and returns its id.
func (r *PoemRepository) Insert(ctx context.Context, p *models.Poem) (primitive.ObjectID, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.PoemStatusPending
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	p.ID = id
	return id, nil
}

// UpsertBySlug upserts a poem uniquely identified by slug. Likes are only
// initialized on insert so re-seeding never resets counters.
func (r *PoemRepository) UpsertBySlug(ctx context.Context, p *models.Poem) (*mongo.UpdateResult, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"slug": p.Slug}
	update := bson.M{
		"$setOnInsert": bson.M{
			"created_at": p.CreatedAt,
			"likes":      p.Likes,
		},
		"$set": bson.M{
			"updated_at": p.UpdatedAt,
			"slug":       p.Slug,
			"title":      p.Title,
			"body":       p.Body,
			"author":     p.Author,
			"category":   p.Category,
			"tags":       p.Tags,
			"status":     p.Status,
			"image_url":  p.ImageURL,
			"image":      p.Image,
			"source":     p.Source,
		},
	}
	return r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
}

// InsertIfNewSourceLink inserts p unless a poem with the same source_link
// already exists. Reports whether a document was inserted.
func (r *PoemRepository) InsertIfNewSourceLink(ctx context.Context, p *models.Poem) (bool, error) {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.PoemStatusPending
	}

	doc, err := bson.Marshal(p)
	if err != nil {
		return false, err
	}
	var fields bson.M
	if err := bson.Unmarshal(doc, &fields); err != nil {
		return false, err
	}
	// source_link 은 upsert filter 에서 채워진다.
	delete(fields, "_id")
	delete(fields, "source_link")

	res, err := r.col.UpdateOne(ctx,
		bson.M{"source_link": p.SourceLink},
		bson.M{"$setOnInsert": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

// IncrementLikes atomically adds 1 to likes and returns the new value.
func (r *PoemRepository) IncrementLikes(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var p models.Poem
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.PoemStatusApproved},
		bson.M{"$inc": bson.M{"likes": 1}, "$set": bson.M{"updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"likes": 1}),
	).Decode(&p)
	if err != nil {
		return 0, translateErr(err)
	}
	return p.Likes, nil
}

// SetStatus records a moderation decision.
func (r *PoemRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.PoemStatus, moderator string) error {
	now := time.Now()
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":       status,
			"moderated_at": now,
			"moderated_by": moderator,
			"updated_at":   now,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFields updates specific fields of a poem
func (r *PoemRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range updates {
		set[k] = v
	}
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a poem by id.
func (r *PoemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
