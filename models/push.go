package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PushKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh" binding:"required"`
	Auth   string `bson:"auth" json:"auth" binding:"required"`
}

// PushSubscription is one browser push endpoint. Each user keeps at most one.
type PushSubscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Endpoint  string             `bson:"endpoint" json:"endpoint"`
	Keys      PushKeys           `bson:"keys" json:"keys"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
