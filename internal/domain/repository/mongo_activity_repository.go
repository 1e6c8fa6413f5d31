package repository

import (
	"context"
	"fmt"
	"lexora/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoActivityRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) ActivityRepository {
	return &mongoActivityRepository{coll: db.Collection(mongoActivitiesCollection)}
}

func (r *mongoActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	if _, err := r.coll.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("mongoActivityRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoActivityRepository) ListRecent(ctx context.Context, limit int) ([]*model.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoActivityRepository.ListRecent: %w", err)
	}
	activities := []*model.Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("mongoActivityRepository.ListRecent decode: %w", err)
	}
	return activities, nil
}
