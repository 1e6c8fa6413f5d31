package repository

import (
	"context"
	"errors"
	"fmt"
	"lexora/internal/common"
	"lexora/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoUsersCollection      = "users"
	mongoBlogsCollection      = "blogs"
	mongoActivitiesCollection = "activities"
)

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(mongoUsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoUserRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, op string, filter bson.M) (*model.User, error) {
	user := &model.User{}
	if err := r.coll.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "FindByEmail", bson.M{"email": email})
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "FindByUsername", bson.M{"username": username})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "FindByID", bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, "FindByIDs", bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, "List", bson.M{}, opts)
}

func (r *mongoUserRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*model.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoUserRepository.%s: %w", op, err)
	}
	var users []*model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongoUserRepository.%s decode: %w", op, err)
	}
	return users, nil
}

func (r *mongoUserRepository) findOneAndUpdate(ctx context.Context, op, id string, update any) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	user := &model.User{}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *mongoUserRepository) UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error) {
	return r.findOneAndUpdate(ctx, "UpdateAvatar", id, bson.M{"$set": bson.M{"avatar": avatar}})
}

func (r *mongoUserRepository) ToggleActive(ctx context.Context, id string) (*model.User, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "isActive", Value: bson.D{{Key: "$not", Value: bson.A{"$isActive"}}}}}}},
	}
	return r.findOneAndUpdate(ctx, "ToggleActive", id, update)
}

// EnsureMongoIndexes creates the unique and sort indexes the repositories
// rely on. It is safe to call on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(mongoUsersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	blogs := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(mongoBlogsCollection).Indexes().CreateMany(ctx, blogs); err != nil {
		return fmt.Errorf("blogs indexes: %w", err)
	}
	activities := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := db.Collection(mongoActivitiesCollection).Indexes().CreateMany(ctx, activities); err != nil {
		return fmt.Errorf("activities indexes: %w", err)
	}
	return nil
}
