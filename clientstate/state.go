// Package clientstate is the client-side session store: the signed-in user,
// their token, the theme mode, the loaded posts and a transient
// notification. State only changes through Reduce.
package clientstate

import (
	"encoding/json"
	"fmt"
	"time"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"

	DefaultAutoHide = 3 * time.Second
)

type Notification struct {
	Open     bool          `json:"open"`
	Message  string        `json:"message"`
	Severity string        `json:"severity"`
	AutoHide time.Duration `json:"autoHide"`
}

type State struct {
	Mode         Mode          `json:"mode"`
	User         *models.User  `json:"user"`
	Token        string        `json:"token"`
	Posts        []models.Post `json:"posts"`
	Notification Notification  `json:"notification"`
}

// Initial is the logged-out state in light mode.
func Initial() State {
	return State{
		Mode:  ModeLight,
		Posts: []models.Post{},
		Notification: Notification{
			Severity: SeveritySuccess,
			AutoHide: DefaultAutoHide,
		},
	}
}

// LoggedIn reports whether the state holds a user and a token.
func (s State) LoggedIn() bool {
	return s.User != nil && s.Token != ""
}

// clone returns a deep copy so reducers can modify it freely.
func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		u.Friends = append([]primitive.ObjectID(nil), s.User.Friends...)
		out.User = &u
	}
	out.Posts = make([]models.Post, len(s.Posts))
	for i := range s.Posts {
		out.Posts[i] = *s.Posts[i].Clone()
	}
	return out
}

// Marshal encodes s for persistence.
func Marshal(s State) ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes persisted state. Unknown modes fall back to light and a
// null post list becomes empty.
func Unmarshal(data []byte) (State, error) {
	s := Initial()
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode client state: %w", err)
	}
	if s.Mode != ModeDark {
		s.Mode = ModeLight
	}
	if s.Posts == nil {
		s.Posts = []models.Post{}
	}
	return s, nil
}
