package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName     string               `bson:"firstName" json:"firstName"`
	LastName      string               `bson:"lastName" json:"lastName"`
	Email         string               `bson:"email" json:"email"`
	PasswordHash  string               `bson:"password" json:"-"`
	PicturePath   string               `bson:"picturePath" json:"picturePath"`
	Friends       []primitive.ObjectID `bson:"friends" json:"friends"`
	Location      string               `bson:"location" json:"location"`
	Occupation    string               `bson:"occupation" json:"occupation"`
	ViewedProfile int                  `bson:"viewedProfile" json:"viewedProfile"`
	Impressions   int                  `bson:"impressions" json:"impressions"`
	Version       int64                `bson:"version" json:"-"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// FriendSummary is the projection returned by the friend endpoints.
type FriendSummary struct {
	ID          primitive.ObjectID `json:"id"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Occupation  string             `json:"occupation"`
	Location    string             `json:"location"`
	PicturePath string             `json:"picturePath"`
}

func (u *User) Summary() FriendSummary {
	return FriendSummary{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Occupation:  u.Occupation,
		Location:    u.Location,
		PicturePath: u.PicturePath,
	}
}

func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// NameQuery is a parsed user search. With Last empty, First is matched as a
// prefix against either name; otherwise First and Last must both match.
type NameQuery struct {
	First string
	Last  string
}
