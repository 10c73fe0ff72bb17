package repository

import (
	"context"
	"errors"
	"fmt"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPosts struct {
	coll *mongo.Collection
}

func NewMongoPosts(db *mongo.Database) *MongoPosts {
	return &MongoPosts{coll: db.Collection("posts")}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoPosts) Create(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = models.LikeSet{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *MongoPosts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

func (r *MongoPosts) List(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPosts) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoPosts) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

func (r *MongoPosts) Save(ctx context.Context, p *models.Post) error {
	update := bson.M{
		"$set": bson.M{
			"description": p.Description,
			"picturePath": p.PicturePath,
			"likes":       p.Likes,
			"comments":    p.Comments,
			"updatedAt":   p.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID, "version": p.Version}, update)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return missingOrStale(ctx, r.coll, p.ID)
	}
	p.Version++
	return nil
}

func (r *MongoPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
