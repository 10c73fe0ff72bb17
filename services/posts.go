package services

import (
	"context"
	"strings"
	"time"

	"friendzone/apperr"
	"friendzone/media"
	"friendzone/models"
	"friendzone/notify"
	"friendzone/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostInput struct {
	UserID      string `json:"userId" form:"userId"`
	Description string `json:"description" form:"description" binding:"max=5000"`
}

// UpdatePostInput leaves fields that are nil unchanged.
type UpdatePostInput struct {
	UserID      string  `json:"userId" form:"userId"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=5000"`
}

type CommentInput struct {
	UserID  string `json:"userId"`
	Comment string `json:"comment" binding:"required,max=2000"`
}

type UpdateCommentInput struct {
	UserID         string `json:"userId"`
	UpdatedComment string `json:"updatedComment" binding:"required,max=2000"`
}

type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	uploader media.Uploader
	events   Publisher
	pusher   notify.Pusher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, uploader media.Uploader, events Publisher, pusher notify.Pusher, log logrus.FieldLogger) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		uploader: uploader,
		events:   events,
		pusher:   pusher,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Feed returns every post, newest first.
func (s *PostService) Feed(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, mapErr(err, "Post")
	}
	return posts, nil
}

func (s *PostService) UserFeed(ctx context.Context, userID string) ([]models.Post, error) {
	oid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, oid)
	if err != nil {
		return nil, mapErr(err, "Post")
	}
	return posts, nil
}

// Create publishes a post by the caller and returns the refreshed feed.
// The author's display fields are copied onto the post.
func (s *PostService) Create(ctx context.Context, callerID string, in CreatePostInput, image *media.Image) ([]models.Post, error) {
	caller, err := parseCaller(callerID)
	if err != nil {
		return nil, err
	}
	if err := checkBodyUser(caller, in.UserID); err != nil {
		return nil, err
	}
	in.Description = strings.TrimSpace(in.Description)
	if err := validate(&in); err != nil {
		return nil, err
	}
	if in.Description == "" && image == nil {
		return nil, apperr.Validation("A post needs a description or an image")
	}

	author, err := s.users.GetByID(ctx, caller)
	if err != nil {
		return nil, mapErr(err, "User")
	}

	var picturePath string
	if image != nil {
		if picturePath, err = s.uploader.Upload(ctx, image, media.FolderPosts); err != nil {
			return nil, err
		}
	}

	now := s.now()
	post := &models.Post{
		ID:              primitive.NewObjectID(),
		UserID:          author.ID,
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		Location:        author.Location,
		UserPicturePath: author.PicturePath,
		Description:     in.Description,
		PicturePath:     picturePath,
		Likes:           models.LikeSet{},
		Comments:        []models.Comment{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, mapErr(err, "Post")
	}

	s.events.Publish(EventPostCreated, post)
	s.log.WithFields(logrus.Fields{"postId": post.ID.Hex(), "userId": caller.Hex()}).Info("Post created")
	return s.Feed(ctx)
}

// ToggleLike likes the post for the caller, or unlikes it if already liked.
func (s *PostService) ToggleLike(ctx context.Context, callerID, postID, bodyUserID string) (*models.Post, error) {
	caller, id, err := s.ids(callerID, postID, bodyUserID)
	if err != nil {
		return nil, err
	}

	var liked bool
	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		p.Likes, liked = p.Likes.Toggle(caller.Hex())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventPostLiked, post)
	if liked && post.UserID != caller {
		s.notifyAuthor(ctx, post, caller, "liked your post")
	}
	return post, nil
}

// Update edits the caller's own post. A new image is uploaded before the
// post is touched, so a failed upload leaves the post as it was.
func (s *PostService) Update(ctx context.Context, callerID, postID string, in UpdatePostInput, image *media.Image) (*models.Post, error) {
	caller, id, err := s.ids(callerID, postID, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		in.Description = &d
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	current, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, "Post")
	}
	if current.UserID != caller {
		return nil, apperr.Forbidden("You can only edit your own posts")
	}

	var picturePath string
	if image != nil {
		if picturePath, err = s.uploader.Upload(ctx, image, media.FolderPosts); err != nil {
			return nil, err
		}
	}

	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		if p.UserID != caller {
			return apperr.Forbidden("You can only edit your own posts")
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if picturePath != "" {
			p.PicturePath = picturePath
		}
		if p.Description == "" && p.PicturePath == "" {
			return apperr.Validation("A post needs a description or an image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventPostUpdated, post)
	return post, nil
}

// Delete removes the caller's own post and returns the refreshed feed.
func (s *PostService) Delete(ctx context.Context, callerID, postID, bodyUserID string) ([]models.Post, error) {
	caller, id, err := s.ids(callerID, postID, bodyUserID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapErr(err, "Post")
	}
	if post.UserID != caller {
		return nil, apperr.Forbidden("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return nil, mapErr(err, "Post")
	}

	s.events.Publish(EventPostDeleted, map[string]string{"id": id.Hex()})
	s.log.WithFields(logrus.Fields{"postId": id.Hex(), "userId": caller.Hex()}).Info("Post deleted")
	return s.Feed(ctx)
}

func (s *PostService) AddComment(ctx context.Context, callerID, postID string, in CommentInput) (*models.Post, error) {
	caller, id, err := s.ids(callerID, postID, in.UserID)
	if err != nil {
		return nil, err
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validate(&in); err != nil {
		return nil, err
	}

	comment := models.Comment{
		CommentID: primitive.NewObjectID().Hex(),
		UserID:    caller,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventCommentAdded, post)
	if post.UserID != caller {
		s.notifyAuthor(ctx, post, caller, "commented on your post")
	}
	return post, nil
}

// UpdateComment edits a comment. Only its author may do this.
func (s *PostService) UpdateComment(ctx context.Context, callerID, postID, commentID string, in UpdateCommentInput) (*models.Post, error) {
	caller, id, err := s.ids(callerID, postID, in.UserID)
	if err != nil {
		return nil, err
	}
	in.UpdatedComment = strings.TrimSpace(in.UpdatedComment)
	if err := validate(&in); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		i, err := ownComment(p, commentID, caller)
		if err != nil {
			return err
		}
		now := s.now()
		p.Comments[i].Comment = in.UpdatedComment
		p.Comments[i].UpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventCommentUpdated, post)
	return post, nil
}

// DeleteComment removes a comment. Only its author may do this.
func (s *PostService) DeleteComment(ctx context.Context, callerID, postID, commentID, bodyUserID string) (*models.Post, error) {
	caller, id, err := s.ids(callerID, postID, bodyUserID)
	if err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, id, func(p *models.Post) error {
		i, err := ownComment(p, commentID, caller)
		if err != nil {
			return err
		}
		p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(EventCommentDeleted, post)
	return post, nil
}

func ownComment(p *models.Post, commentID string, caller primitive.ObjectID) (int, error) {
	i := p.CommentIndex(commentID)
	if i < 0 {
		return -1, apperr.NotFound("Comment not found")
	}
	if p.Comments[i].UserID != caller {
		return -1, apperr.Forbidden("You can only change your own comments")
	}
	return i, nil
}

func (s *PostService) ids(callerID, postID, bodyUserID string) (primitive.ObjectID, primitive.ObjectID, error) {
	caller, err := parseCaller(callerID)
	if err != nil {
		return caller, primitive.NilObjectID, err
	}
	if err := checkBodyUser(caller, bodyUserID); err != nil {
		return caller, primitive.NilObjectID, err
	}
	id, err := parseID(postID, "post")
	return caller, id, err
}

// mutate applies fn to a fresh copy of the post and saves it under the
// version read, retrying on conflict.
func (s *PostService) mutate(ctx context.Context, id primitive.ObjectID, fn func(p *models.Post) error) (*models.Post, error) {
	var out *models.Post
	err := withRetry(ctx, func() error {
		p, err := s.posts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		if err := s.posts.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "Post")
	}
	return out, nil
}

func (s *PostService) notifyAuthor(ctx context.Context, post *models.Post, actorID primitive.ObjectID, action string) {
	name := "Someone"
	if actor, err := s.users.GetByID(ctx, actorID); err == nil {
		name = actor.FirstName + " " + actor.LastName
	}
	s.pusher.Push(post.UserID, notify.Message{
		Title: "FriendZone",
		Body:  name + " " + action,
		URL:   "/posts/" + post.ID.Hex(),
	})
}
