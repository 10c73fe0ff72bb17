// Package repository persists users, posts and push subscriptions. The
// MongoDB implementations are used in production; the in-memory store backs
// tests and the memory storage driver.
package repository

import (
	"context"
	"errors"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrVersionConflict = errors.New("version conflict")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetMany returns the users that exist among ids, in no particular order.
	GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	Search(ctx context.Context, q models.NameQuery) ([]models.User, error)
	// UpdateFriends adds or removes friendID on user id if its stored version
	// still equals version. The version is bumped on success.
	UpdateFriends(ctx context.Context, id primitive.ObjectID, version int64, friendID primitive.ObjectID, add bool) error
}

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]models.Post, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	// Save writes the mutable fields of p (description, picture, likes,
	// comments) if the stored version equals p.Version, then increments
	// p.Version.
	Save(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Transactor runs fn atomically. Repository calls made with the context
// passed to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
