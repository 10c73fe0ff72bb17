package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{coll: db.Collection("users")}
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoUsers) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUsers) Search(ctx context.Context, q models.NameQuery) ([]models.User, error) {
	first := prefixRegex(q.First)
	var filter bson.M
	if q.Last == "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"firstName": first},
			bson.M{"lastName": first},
		}}
	} else {
		filter = bson.M{"firstName": first, "lastName": prefixRegex(q.Last)}
	}
	return r.find(ctx, filter)
}

func (r *MongoUsers) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUsers) UpdateFriends(ctx context.Context, id primitive.ObjectID, version int64, friendID primitive.ObjectID, add bool) error {
	op := "$pull"
	if add {
		op = "$addToSet"
	}
	update := bson.M{
		op:     bson.M{"friends": friendID},
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "version": version}, update)
	if err != nil {
		return fmt.Errorf("update friends: %w", err)
	}
	if res.MatchedCount == 0 {
		return missingOrStale(ctx, r.coll, id)
	}
	return nil
}

func prefixRegex(token string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(token), Options: "i"}
}

// missingOrStale distinguishes a vanished document from a version mismatch
// after a filtered update matched nothing.
func missingOrStale(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}
