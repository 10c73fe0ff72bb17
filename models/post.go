package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post author fields (FirstName, LastName, Location, UserPicturePath) are a
// snapshot taken when the post is created and are not refreshed when the
// author edits their profile.
type Post struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	FirstName       string             `bson:"firstName" json:"firstName"`
	LastName        string             `bson:"lastName" json:"lastName"`
	Location        string             `bson:"location" json:"location"`
	UserPicturePath string             `bson:"userPicturePath" json:"userPicturePath"`
	Description     string             `bson:"description" json:"description"`
	PicturePath     string             `bson:"picturePath" json:"picturePath"`
	Likes           LikeSet            `bson:"likes" json:"likes"`
	Comments        []Comment          `bson:"comments" json:"comments"`
	Version         int64              `bson:"version" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	CommentID string             `bson:"commentId" json:"commentId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (p *Post) CommentIndex(commentID string) int {
	for i := range p.Comments {
		if p.Comments[i].CommentID == commentID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without aliasing storage.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Likes = append(make(LikeSet, 0, len(p.Likes)), p.Likes...)
	cp.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		if c.UpdatedAt != nil {
			t := *c.UpdatedAt
			c.UpdatedAt = &t
		}
		cp.Comments[i] = c
	}
	return &cp
}
