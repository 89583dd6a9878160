package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"poemas-versos/db"
	"poemas-versos/models"
)

// AILogRepository 는 생성 호출 기록(ai_logs)을 다룬다.
type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(d *mongo.Database) *AILogRepository {
	return &AILogRepository{col: d.Collection(db.CollectionAILogs)}
}

func (r *AILogRepository) Insert(ctx context.Context, entry models.AILog) (*mongo.InsertOneResult, error) {
	if entry.RequestedAt.IsZero() {
		entry.RequestedAt = time.Now()
	}
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = entry.RequestedAt
	}
	return r.col.InsertOne(ctx, entry)
}

// CountSince 는 since 이후 요청된 생성 호출 수를 센다. 실패한 호출도 한도를 소모했으므로 포함한다.
func (r *AILogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"requested_at": bson.M{"$gte": since}})
}
