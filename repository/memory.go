package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"friendzone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. Values are copied on the
// way in and out so callers never share storage with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	posts map[primitive.ObjectID]*models.Post
	subs  map[primitive.ObjectID]models.PushSubscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]models.User),
		posts: make(map[primitive.ObjectID]*models.Post),
		subs:  make(map[primitive.ObjectID]models.PushSubscription),
	}
}

func (s *MemoryStore) Users() *MemoryUsers { return &MemoryUsers{s} }
func (s *MemoryStore) Posts() *MemoryPosts { return &MemoryPosts{s} }
func (s *MemoryStore) PushSubscriptions() *MemoryPushSubscriptions {
	return &MemoryPushSubscriptions{s}
}

func copyUser(u models.User) models.User {
	u.Friends = append([]primitive.ObjectID{}, u.Friends...)
	return u
}

type MemoryUsers struct{ s *MemoryStore }

func (r *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Friends == nil {
		u.Friends = []primitive.ObjectID{}
	}
	r.s.users[u.ID] = copyUser(*u)
	return nil
}

func (r *MemoryUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyUser(u)
	return &cp, nil
}

func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := copyUser(u)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *MemoryUsers) Search(ctx context.Context, q models.NameQuery) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.User{}
	for _, u := range r.s.users {
		var match bool
		if q.Last == "" {
			match = hasPrefixFold(u.FirstName, q.First) || hasPrefixFold(u.LastName, q.First)
		} else {
			match = hasPrefixFold(u.FirstName, q.First) && hasPrefixFold(u.LastName, q.Last)
		}
		if match {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

func (r *MemoryUsers) UpdateFriends(ctx context.Context, id primitive.ObjectID, version int64, friendID primitive.ObjectID, add bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.Version != version {
		return ErrVersionConflict
	}
	u = copyUser(u)
	switch {
	case add && !u.HasFriend(friendID):
		u.Friends = append(u.Friends, friendID)
	case !add:
		kept := u.Friends[:0]
		for _, f := range u.Friends {
			if f != friendID {
				kept = append(kept, f)
			}
		}
		u.Friends = kept
	}
	u.Version++
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

type MemoryPosts struct{ s *MemoryStore }

func (r *MemoryPosts) Create(ctx context.Context, p *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = models.LikeSet{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	r.s.posts[p.ID] = p.Clone()
	return nil
}

func (r *MemoryPosts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryPosts) List(ctx context.Context) ([]models.Post, error) {
	return r.list(ctx, func(*models.Post) bool { return true })
}

func (r *MemoryPosts) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return r.list(ctx, func(p *models.Post) bool { return p.UserID == userID })
}

func (r *MemoryPosts) list(ctx context.Context, keep func(*models.Post) bool) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *MemoryPosts) Save(ctx context.Context, p *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[p.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != p.Version {
		return ErrVersionConflict
	}
	next := stored.Clone()
	next.Description = p.Description
	next.PicturePath = p.PicturePath
	next.Likes = p.Likes
	next.Comments = p.Comments
	next.UpdatedAt = p.UpdatedAt
	next.Version++
	r.s.posts[p.ID] = next.Clone()
	p.Version = next.Version
	return nil
}

func (r *MemoryPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

type MemoryPushSubscriptions struct{ s *MemoryStore }

func (r *MemoryPushSubscriptions) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.subs[sub.UserID]; ok {
		sub.ID = existing.ID
	} else if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	r.s.subs[sub.UserID] = *sub
	return nil
}

func (r *MemoryPushSubscriptions) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.PushSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (r *MemoryPushSubscriptions) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.subs, userID)
	return nil
}
