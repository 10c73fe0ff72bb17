package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectAttempts = 3

// Connect dials MongoDB and pings it, retrying a few times while the server
// comes up.
func Connect(ctx context.Context, uri, dbName string, log logrus.FieldLogger) (*mongo.Client, *mongo.Database, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := dial(ctx, uri)
		if err == nil {
			log.WithField("database", dbName).Info("Connected to MongoDB successfully")
			return client, client.Database(dbName), nil
		}
		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("MongoDB connection failed")

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return nil, nil, fmt.Errorf("connect mongo after %d attempts: %w", connectAttempts, lastErr)
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func Disconnect(client *mongo.Client, log logrus.FieldLogger) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return err
	}

	log.Info("Disconnected from MongoDB")
	return nil
}

// EnsureIndexes creates the unique email index and the feed indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection("posts").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}

	_, err = db.Collection("push_subscriptions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("push subscriptions index: %w", err)
	}
	return nil
}
