// Package services holds the FriendZone use cases. Handlers call exactly one
// service method per request; services own validation, authorization and the
// optimistic-concurrency retry loop.
package services

import (
	"context"
	"errors"

	"friendzone/apperr"
	"friendzone/repository"
	"friendzone/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed events broadcast to realtime subscribers.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventCommentAdded   = "comment_added"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

type Publisher interface {
	Publish(eventType string, payload any)
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, any) {}

const maxAttempts = 3

// withRetry reruns fn while it reports a version conflict, up to
// maxAttempts times.
func withRetry(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, repository.ErrVersionConflict) || attempt == maxAttempts {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// mapErr turns repository sentinels into client-facing errors. what names
// the resource in not-found messages.
func mapErr(err error, what string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict("Email is already registered")
	case errors.Is(err, repository.ErrVersionConflict):
		return apperr.Conflict(what + " was modified concurrently, please retry")
	default:
		return apperr.Internal("Internal server error", err)
	}
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + what + " id")
	}
	return id, nil
}

// parseCaller parses the authenticated user id set by the auth middleware.
func parseCaller(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Auth("Invalid token")
	}
	return id, nil
}

// checkBodyUser rejects a request body that names a user other than the
// authenticated caller. An empty body value is accepted.
func checkBodyUser(caller primitive.ObjectID, bodyUserID string) error {
	if bodyUserID != "" && bodyUserID != caller.Hex() {
		return apperr.Forbidden("You can only act as yourself")
	}
	return nil
}

func validate(obj any) error {
	if err := validation.Struct(obj); err != nil {
		details := validation.ToDetails(err)
		return apperr.Invalid(validation.Summary(details), details)
	}
	return nil
}
