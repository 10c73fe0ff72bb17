package repository

import (
	"context"
	"testing"
	"time"

	"friendzone/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedUser(t *testing.T, users *MemoryUsers, first, last, email string) *models.User {
	t.Helper()
	u := &models.User{FirstName: first, LastName: last, Email: email}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestMemoryUsersDuplicateEmail(t *testing.T) {
	users := NewMemoryStore().Users()
	seedUser(t, users, "Ada", "Lovelace", "ada@example.com")

	err := users.Create(context.Background(), &models.User{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryUsersSearch(t *testing.T) {
	users := NewMemoryStore().Users()
	seedUser(t, users, "John", "Smith", "js@example.com")
	seedUser(t, users, "Jane", "Johnson", "jj@example.com")
	seedUser(t, users, "Bob", "Jones", "bj@example.com")

	tests := []struct {
		name  string
		query models.NameQuery
		want  []string
	}{
		{"single token matches either name", models.NameQuery{First: "jo"}, []string{"Bob", "Jane", "John"}},
		{"case insensitive", models.NameQuery{First: "JOHN"}, []string{"Jane", "John"}},
		{"two tokens need both", models.NameQuery{First: "jo", Last: "sm"}, []string{"John"}},
		{"no match", models.NameQuery{First: "zed"}, nil},
		{"regex characters are literal", models.NameQuery{First: "j.*"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := users.Search(context.Background(), tt.query)
			require.NoError(t, err)
			var names []string
			for _, u := range got {
				names = append(names, u.FirstName)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestMemoryUsersUpdateFriendsVersion(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()
	a := seedUser(t, users, "Ann", "A", "a@example.com")
	b := seedUser(t, users, "Ben", "B", "b@example.com")

	require.NoError(t, users.UpdateFriends(ctx, a.ID, 0, b.ID, true))
	assert.ErrorIs(t, users.UpdateFriends(ctx, a.ID, 0, b.ID, false), ErrVersionConflict)
	assert.ErrorIs(t, users.UpdateFriends(ctx, primitive.NewObjectID(), 0, b.ID, true), ErrNotFound)

	got, err := users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{b.ID}, got.Friends)
	assert.EqualValues(t, 1, got.Version)

	require.NoError(t, users.UpdateFriends(ctx, a.ID, 1, b.ID, false))
	got, err = users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Friends)
}

func TestMemoryPostsOrderingAndSave(t *testing.T) {
	ctx := context.Background()
	posts := NewMemoryStore().Posts()
	author := primitive.NewObjectID()
	base := time.Now()

	older := &models.Post{UserID: author, Description: "older", CreatedAt: base}
	newer := &models.Post{UserID: primitive.NewObjectID(), Description: "newer", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	all, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Description)

	mine, err := posts.ListByUser(ctx, author)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	p, err := posts.GetByID(ctx, older.ID)
	require.NoError(t, err)
	stale := p.Clone()

	p.Likes, _ = p.Likes.Toggle("u1")
	require.NoError(t, posts.Save(ctx, p))
	assert.EqualValues(t, 1, p.Version)

	stale.Description = "lost update"
	assert.ErrorIs(t, posts.Save(ctx, stale), ErrVersionConflict)

	require.NoError(t, posts.Delete(ctx, older.ID))
	assert.ErrorIs(t, posts.Delete(ctx, older.ID), ErrNotFound)
	_, err = posts.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := &models.Post{Description: "x", CreatedAt: time.Now()}
	require.NoError(t, store.Posts().Create(ctx, p))

	got, err := store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Likes = append(got.Likes, "intruder")

	again, err := store.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Likes)
}

func TestMemoryPushSubscriptions(t *testing.T) {
	ctx := context.Background()
	subs := NewMemoryStore().PushSubscriptions()
	user := primitive.NewObjectID()

	require.NoError(t, subs.Upsert(ctx, &models.PushSubscription{UserID: user, Endpoint: "https://push/1"}))
	require.NoError(t, subs.Upsert(ctx, &models.PushSubscription{UserID: user, Endpoint: "https://push/2"}))

	got, err := subs.GetByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "https://push/2", got.Endpoint)

	require.NoError(t, subs.DeleteByUser(ctx, user))
	_, err = subs.GetByUser(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)
}
