package repositories

import (
	"context"
	"time"

	"github.com/arafat31/wavely/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityRepository defines the interface for the append-only activity stream
type ActivityRepository interface {
	Record(ctx context.Context, activity *models.Activity) error
	ForActors(ctx context.Context, actorIDs []uint, excluding *uint, limit int64) ([]models.Activity, error)
	Latest(ctx context.Context, excluding *uint, limit int64) ([]models.Activity, error)
	CountForActor(ctx context.Context, actorID uint) (int64, error)
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// Record appends one activity with a server-side timestamp. Activities are
// immutable; there is no update or delete path.
func (r *MongoActivityRepository) Record(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	activity.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// ForActors retrieves activities whose actor is in actorIDs, newest first,
// optionally excluding one actor
func (r *MongoActivityRepository) ForActors(ctx context.Context, actorIDs []uint, excluding *uint, limit int64) ([]models.Activity, error) {
	filter := bson.M{"actor_id": bson.M{"$in": actorIDs}}
	if excluding != nil {
		filter["actor_id"] = bson.M{"$in": actorIDs, "$ne": *excluding}
	}
	return r.find(ctx, filter, limit)
}

// Latest retrieves the global activity stream, newest first, optionally
// excluding one actor
func (r *MongoActivityRepository) Latest(ctx context.Context, excluding *uint, limit int64) ([]models.Activity, error) {
	filter := bson.M{}
	if excluding != nil {
		filter["actor_id"] = bson.M{"$ne": *excluding}
	}
	return r.find(ctx, filter, limit)
}

func (r *MongoActivityRepository) CountForActor(ctx context.Context, actorID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"actor_id": actorID})
}

func (r *MongoActivityRepository) find(ctx context.Context, filter bson.M, limit int64) ([]models.Activity, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
