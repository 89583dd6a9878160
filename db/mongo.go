package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"poemas-versos/config"
)

const (
	CollectionPoems      = "poems"
	CollectionCategories = "categories"
	CollectionFavorites  = "favorites"
	CollectionGallery    = "gallery"
	CollectionAILogs     = "ai_logs"

	ImageBucketName = "images"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
	bucket     *gridfs.Bucket
)

// Init initializes the global Mongo client and database using config values.
func Init(ctx context.Context) error {
	var initErr error
	clientOnce.Do(func() {
		cfg := config.GetConfig().Mongo

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(cfg.DBName)

		b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(ImageBucketName))
		if err != nil {
			initErr = err
			return
		}
		bucket = b

		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		config.Logger.Infof("MongoDB connected (db=%s) and indexes ensured", cfg.DBName)
	})
	return initErr
}

func Client() *mongo.Client       { return client }
func Database() *mongo.Database   { return db }
func ImageBucket() *gridfs.Bucket { return bucket }

// Disconnect closes the global client. Safe to call when Init failed.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// Ping checks the primary is reachable. Used by the health endpoint.
func Ping(ctx context.Context) error {
	if db == nil {
		return mongo.ErrClientDisconnected
	}
	return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// poems
	{
		models := []mongo.IndexModel{
			// random sampler enumeration: equality on category + status
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("idx_category_status"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_status_created_at_desc"),
			},
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetName("uniq_slug").SetUnique(true).SetSparse(true),
			},
			{
				Keys:    bson.D{{Key: "source_link", Value: 1}},
				Options: options.Index().SetName("uniq_source_link").SetUnique(true).SetSparse(true),
			},
			{
				Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "body", Value: "text"}, {Key: "tags", Value: "text"}},
				Options: options.Index().
					SetName("txt_title_body_tags").
					SetDefaultLanguage("spanish").
					SetWeights(bson.D{{Key: "title", Value: 5}, {Key: "tags", Value: 3}, {Key: "body", Value: 1}}),
			},
		}
		if _, err := d.Collection(CollectionPoems).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	// categories: unique name
	if _, err := d.Collection(CollectionCategories).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("uniq_name").SetUnique(true),
	}); err != nil {
		return err
	}

	// favorites: unique (user_code, poem_id)
	if _, err := d.Collection(CollectionFavorites).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_code", Value: 1}, {Key: "poem_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_poem").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_code", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created_at_desc"),
		},
	}); err != nil {
		return err
	}

	// gallery: kind + category
	if _, err := d.Collection(CollectionGallery).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_kind_category"),
	}); err != nil {
		return err
	}

	// ai_logs: requested_at desc
	if _, err := d.Collection(CollectionAILogs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "requested_at", Value: -1}},
		Options: options.Index().SetName("idx_requested_at_desc"),
	}); err != nil {
		return err
	}
	return nil
}
