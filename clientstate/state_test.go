package clientstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"friendzone/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleUser() models.User {
	return models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	}
}

func samplePost(text string) models.Post {
	return models.Post{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		Description: text,
		Likes:       models.LikeSet{},
		Comments:    []models.Comment{},
	}
}

func TestToggleMode(t *testing.T) {
	s := Initial()
	s = Reduce(s, ToggleMode{})
	assert.Equal(t, ModeDark, s.Mode)
	s = Reduce(s, ToggleMode{})
	assert.Equal(t, ModeLight, s.Mode)
}

func TestLoginLogout(t *testing.T) {
	u := sampleUser()
	s := Reduce(Initial(), SetLogin{User: u, Token: "tok"})
	require.True(t, s.LoggedIn())
	assert.Equal(t, u.ID, s.User.ID)
	assert.Equal(t, "tok", s.Token)

	s = Reduce(s, SetLogout{})
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
}

func TestSetFriends(t *testing.T) {
	friend := models.FriendSummary{ID: primitive.NewObjectID(), FirstName: "Bob"}

	t.Run("logged out is a no-op", func(t *testing.T) {
		before := Initial()
		after := Reduce(before, SetFriends{Friends: []models.FriendSummary{friend}})
		assert.Equal(t, before, after)
	})

	t.Run("replaces the friend list", func(t *testing.T) {
		u := sampleUser()
		u.Friends = []primitive.ObjectID{primitive.NewObjectID()}
		s := Reduce(Initial(), SetLogin{User: u, Token: "tok"})
		s = Reduce(s, SetFriends{Friends: []models.FriendSummary{friend}})
		assert.Equal(t, []primitive.ObjectID{friend.ID}, s.User.Friends)
	})
}

func TestSetPost(t *testing.T) {
	a, b := samplePost("a"), samplePost("b")
	s := Reduce(Initial(), SetPosts{Posts: []models.Post{a, b}})

	edited := b
	edited.Description = "b edited"
	s = Reduce(s, SetPost{Post: edited})
	require.Len(t, s.Posts, 2)
	assert.Equal(t, "a", s.Posts[0].Description)
	assert.Equal(t, "b edited", s.Posts[1].Description)

	s = Reduce(s, SetPost{Post: samplePost("stranger")})
	assert.Len(t, s.Posts, 2)
}

func TestNotification(t *testing.T) {
	s := Reduce(Initial(), ShowNotification{Message: "Saved"})
	assert.Equal(t, Notification{Open: true, Message: "Saved", Severity: SeveritySuccess, AutoHide: DefaultAutoHide}, s.Notification)

	s = Reduce(s, ShowNotification{Message: "Oops", Severity: SeverityError, AutoHide: time.Second})
	assert.Equal(t, SeverityError, s.Notification.Severity)
	assert.Equal(t, time.Second, s.Notification.AutoHide)

	s = Reduce(s, HideNotification{})
	assert.False(t, s.Notification.Open)
	assert.Empty(t, s.Notification.Message)
	assert.Equal(t, SeveritySuccess, s.Notification.Severity)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	u := sampleUser()
	u.Friends = []primitive.ObjectID{primitive.NewObjectID()}
	post := samplePost("original")
	post.Likes = models.LikeSet{"x"}

	before := Reduce(Initial(), SetLogin{User: u, Token: "tok"})
	before = Reduce(before, SetPosts{Posts: []models.Post{post}})
	snapshot, err := Marshal(before)
	require.NoError(t, err)

	edited := post
	edited.Description = "changed"
	edited.Likes = models.LikeSet{}
	actions := []Action{
		ToggleMode{},
		SetLogout{},
		SetFriends{Friends: []models.FriendSummary{{ID: primitive.NewObjectID()}}},
		SetPosts{Posts: nil},
		SetPost{Post: edited},
		ShowNotification{Message: "hi"},
	}
	for _, a := range actions {
		Reduce(before, a)
	}

	after, err := Marshal(before)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(after))
}

func TestUnmarshalNormalizes(t *testing.T) {
	s, err := Unmarshal([]byte(`{"mode":"purple","posts":null}`))
	require.NoError(t, err)
	assert.Equal(t, ModeLight, s.Mode)
	assert.NotNil(t, s.Posts)

	_, err = Unmarshal([]byte(`{not json`))
	assert.Error(t, err)
}

func TestStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Initial(), st.State())

	u := sampleUser()
	st.Dispatch(SetLogin{User: u, Token: "tok"})
	st.Dispatch(ToggleMode{})
	st.Dispatch(SetPosts{Posts: []models.Post{samplePost("persisted")}})
	require.NoError(t, st.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	s := reloaded.State()
	assert.Equal(t, ModeDark, s.Mode)
	assert.Equal(t, "tok", s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, u.ID, s.User.ID)
	require.Len(t, s.Posts, 1)
	assert.Equal(t, "persisted", s.Posts[0].Description)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
