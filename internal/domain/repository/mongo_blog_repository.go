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

type mongoBlogRepository struct {
	coll *mongo.Collection
}

func NewMongoBlogRepository(db *mongo.Database) BlogRepository {
	return &mongoBlogRepository{coll: db.Collection(mongoBlogsCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *mongoBlogRepository) Create(ctx context.Context, blog *model.Blog) error {
	blog.Tags = nonNilStrings(blog.Tags)
	blog.Likes = nonNilStrings(blog.Likes)
	if blog.Comments == nil {
		blog.Comments = []model.Comment{}
	}
	if _, err := r.coll.InsertOne(ctx, blog); err != nil {
		return fmt.Errorf("mongoBlogRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoBlogRepository) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	blog := &model.Blog{}
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(blog); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoBlogRepository.FindByID: %w", err)
	}
	return blog, nil
}

func (r *mongoBlogRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*model.Blog, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.%s: %w", op, err)
	}
	blogs := []*model.Blog{}
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.%s decode: %w", op, err)
	}
	return blogs, nil
}

func (r *mongoBlogRepository) List(ctx context.Context) ([]*model.Blog, error) {
	return r.find(ctx, "List", bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *mongoBlogRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Blog, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("mongoBlogRepository.ListByAuthor negative offset %d: %w", offset, common.ErrBadRequest)
	}
	filter := bson.M{"author": authorID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongoBlogRepository.ListByAuthor count: %w", err)
	}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetSkip(int64(offset)).SetLimit(int64(limit))
	}
	blogs, err := r.find(ctx, "ListByAuthor", filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return blogs, int(total), nil
}

func (r *mongoBlogRepository) Trending(ctx context.Context, limit int) ([]*model.Blog, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: "likeCount", Value: bson.D{
			{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.Trending: %w", err)
	}
	blogs := []*model.Blog{}
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.Trending decode: %w", err)
	}
	return blogs, nil
}

func (r *mongoBlogRepository) AuthorIDs(ctx context.Context, limit int) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$author"}, {Key: "last", Value: bson.D{{Key: "$max", Value: "$createdAt"}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "last", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.AuthorIDs: %w", err)
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongoBlogRepository.AuthorIDs decode: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *mongoBlogRepository) Update(ctx context.Context, blog *model.Blog) error {
	update := bson.M{"$set": bson.M{
		"title":     blog.Title,
		"slug":      blog.Slug,
		"content":   blog.Content,
		"excerpt":   blog.Excerpt,
		"tags":      nonNilStrings(blog.Tags),
		"image":     blog.Image,
		"updatedAt": blog.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": blog.ID}, update)
	if err != nil {
		return fmt.Errorf("mongoBlogRepository.Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongoBlogRepository.Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// toggleLikeUpdate removes userID from likes when present and appends it
// otherwise, evaluated server side against the current document.
func toggleLikeUpdate(userID string) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
		}}}}}}},
	}
}

func (r *mongoBlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})
	var doc struct {
		Likes []string `bson:"likes"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": blogID}, toggleLikeUpdate(userID), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("mongoBlogRepository.ToggleLike: %w", err)
	}
	return len(doc.Likes), nil
}

func (r *mongoBlogRepository) AddComment(ctx context.Context, blogID string, c *model.Comment) error {
	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": bson.A{c}, "$position": 0}}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": blogID}, update)
	if err != nil {
		return fmt.Errorf("mongoBlogRepository.AddComment: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
