package services

import (
	"context"
	"strings"

	"friendzone/apperr"
	"friendzone/models"
	"friendzone/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	users repository.UserRepository
	tx    repository.Transactor
	log   logrus.FieldLogger
}

// NewUserService returns a UserService. With a nil tx, friend toggles fall
// back to two version-checked writes and a compensating revert.
func NewUserService(users repository.UserRepository, tx repository.Transactor, log logrus.FieldLogger) *UserService {
	return &UserService{users: users, tx: tx, log: log}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return nil, mapErr(err, "User")
	}
	return user, nil
}

// GetFriends resolves the user's friend ids in list order. Ids whose user no
// longer exists are skipped.
func (s *UserService) GetFriends(ctx context.Context, id string) ([]models.FriendSummary, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, user.Friends)
}

func (s *UserService) summaries(ctx context.Context, ids []primitive.ObjectID) ([]models.FriendSummary, error) {
	found, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, mapErr(err, "User")
	}
	byID := make(map[primitive.ObjectID]*models.User, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	out := make([]models.FriendSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

// ToggleFriend adds friendID to selfID's friends (and the reverse), or
// removes both links if they already exist. Only selfID may do this.
func (s *UserService) ToggleFriend(ctx context.Context, callerID, selfID, friendID string) ([]models.FriendSummary, error) {
	caller, err := parseCaller(callerID)
	if err != nil {
		return nil, err
	}
	self, err := parseID(selfID, "user")
	if err != nil {
		return nil, err
	}
	other, err := parseID(friendID, "friend")
	if err != nil {
		return nil, err
	}
	if self == other {
		return nil, apperr.Validation("You cannot add yourself as a friend")
	}
	if caller != self {
		return nil, apperr.Forbidden("You can only change your own friend list")
	}

	var user *models.User
	err = withRetry(ctx, func() error {
		u, err := s.users.GetByID(ctx, self)
		if err != nil {
			return mapErr(err, "User")
		}
		f, err := s.users.GetByID(ctx, other)
		if err != nil {
			return mapErr(err, "Friend")
		}
		add := !u.HasFriend(f.ID)

		if s.tx != nil {
			err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
				if err := s.users.UpdateFriends(ctx, u.ID, u.Version, f.ID, add); err != nil {
					return err
				}
				return s.users.UpdateFriends(ctx, f.ID, f.Version, u.ID, add)
			})
		} else {
			err = s.toggleCompensated(ctx, u, f, add)
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, mapErr(err, "User")
	}

	fields := logrus.Fields{"userId": self.Hex(), "friendId": other.Hex()}
	s.log.WithFields(fields).Debug("Friend toggled")

	return s.GetFriends(ctx, user.ID.Hex())
}

func (s *UserService) toggleCompensated(ctx context.Context, u, f *models.User, add bool) error {
	if err := s.users.UpdateFriends(ctx, u.ID, u.Version, f.ID, add); err != nil {
		return err
	}
	err := s.users.UpdateFriends(ctx, f.ID, f.Version, u.ID, add)
	if err == nil {
		return nil
	}
	if rerr := s.users.UpdateFriends(context.WithoutCancel(ctx), u.ID, u.Version+1, f.ID, !add); rerr != nil {
		s.log.WithFields(logrus.Fields{
			"userId":   u.ID.Hex(),
			"friendId": f.ID.Hex(),
		}).WithError(rerr).Error("Failed to revert friend toggle; friend lists may be asymmetric")
	}
	return err
}

// Search finds users by name prefix. One token matches either name; two
// tokens match first and last name respectively.
func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	tokens := strings.Fields(term)
	var q models.NameQuery
	switch len(tokens) {
	case 0:
		return nil, apperr.Validation("searchTerm is required")
	case 1:
		q.First = tokens[0]
	case 2:
		q.First, q.Last = tokens[0], tokens[1]
	default:
		return nil, apperr.Validation("Search by first name, or first and last name")
	}

	users, err := s.users.Search(ctx, q)
	if err != nil {
		return nil, mapErr(err, "User")
	}
	return users, nil
}
