package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactor runs multi-document transactions. It requires a replica
// set or sharded cluster.
type MongoTransactor struct {
	client *mongo.Client
}

func NewMongoTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{client: client}
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
