package clientstate

import (
	"time"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is one of the store's named transitions. The set is closed.
type Action interface {
	apply(s *State)
}

type ToggleMode struct{}

type SetLogin struct {
	User  models.User
	Token string
}

type SetLogout struct{}

// SetFriends replaces the signed-in user's friend list. It does nothing
// when nobody is signed in.
type SetFriends struct {
	Friends []models.FriendSummary
}

type SetPosts struct {
	Posts []models.Post
}

// SetPost replaces the loaded post with the same id. Posts that are not
// loaded are ignored.
type SetPost struct {
	Post models.Post
}

// ShowNotification opens the notification. Zero AutoHide uses
// DefaultAutoHide and an empty Severity means success.
type ShowNotification struct {
	Message  string
	Severity string
	AutoHide time.Duration
}

type HideNotification struct{}

// Reduce returns the state after a. s is left untouched.
func Reduce(s State, a Action) State {
	next := s.clone()
	if a != nil {
		a.apply(&next)
	}
	return next
}

func (ToggleMode) apply(s *State) {
	if s.Mode == ModeDark {
		s.Mode = ModeLight
	} else {
		s.Mode = ModeDark
	}
}

func (a SetLogin) apply(s *State) {
	u := a.User
	u.Friends = append([]primitive.ObjectID(nil), a.User.Friends...)
	s.User = &u
	s.Token = a.Token
}

func (SetLogout) apply(s *State) {
	s.User = nil
	s.Token = ""
}

func (a SetFriends) apply(s *State) {
	if s.User == nil {
		return
	}
	ids := make([]primitive.ObjectID, len(a.Friends))
	for i, f := range a.Friends {
		ids[i] = f.ID
	}
	s.User.Friends = ids
}

func (a SetPosts) apply(s *State) {
	s.Posts = make([]models.Post, len(a.Posts))
	for i := range a.Posts {
		s.Posts[i] = *a.Posts[i].Clone()
	}
}

func (a SetPost) apply(s *State) {
	for i := range s.Posts {
		if s.Posts[i].ID == a.Post.ID {
			s.Posts[i] = *a.Post.Clone()
		}
	}
}

func (a ShowNotification) apply(s *State) {
	n := Notification{
		Open:     true,
		Message:  a.Message,
		Severity: a.Severity,
		AutoHide: a.AutoHide,
	}
	if n.Severity == "" {
		n.Severity = SeveritySuccess
	}
	if n.AutoHide <= 0 {
		n.AutoHide = DefaultAutoHide
	}
	s.Notification = n
}

func (HideNotification) apply(s *State) {
	s.Notification.Open = false
	s.Notification.Message = ""
	s.Notification.Severity = SeveritySuccess
}
