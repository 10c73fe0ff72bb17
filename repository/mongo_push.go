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

type MongoPushSubscriptions struct {
	coll *mongo.Collection
}

func NewMongoPushSubscriptions(db *mongo.Database) *MongoPushSubscriptions {
	return &MongoPushSubscriptions{coll: db.Collection("push_subscriptions")}
}

// Upsert replaces the user's subscription, inserting one if absent.
func (r *MongoPushSubscriptions) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	set := bson.M{
		"endpoint":  sub.Endpoint,
		"keys":      sub.Keys,
		"updatedAt": sub.UpdatedAt,
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": sub.UserID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": primitive.NewObjectID()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert push subscription: %w", err)
	}
	return nil
}

func (r *MongoPushSubscriptions) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find push subscription: %w", err)
	}
	return &sub, nil
}

func (r *MongoPushSubscriptions) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
