package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"friendzone/logger"
	"friendzone/media"
	"friendzone/models"
	"friendzone/notify"
	"friendzone/repository"
	"friendzone/token"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, img *media.Image, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, folder+"/"+img.Filename)
	return "https://img.example.com/" + folder + "/" + img.Filename, nil
}

type event struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{eventType, payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingPusher struct {
	mu   sync.Mutex
	sent map[primitive.ObjectID][]notify.Message
}

func (p *recordingPusher) Push(userID primitive.ObjectID, msg notify.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[primitive.ObjectID][]notify.Message)
	}
	p.sent[userID] = append(p.sent[userID], msg)
}

func (p *recordingPusher) count(userID primitive.ObjectID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[userID])
}

type env struct {
	store    *repository.MemoryStore
	uploader *fakeUploader
	events   *recordingPublisher
	pusher   *recordingPusher
	tokens   *token.Manager
	auth     *AuthService
	users    *UserService
	posts    *PostService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.Discard()
	e := &env{
		store:    repository.NewMemoryStore(),
		uploader: &fakeUploader{},
		events:   &recordingPublisher{},
		pusher:   &recordingPusher{},
		tokens:   token.NewManager("test-secret", time.Hour),
	}
	e.auth = NewAuthService(e.store.Users(), e.uploader, e.tokens, log)
	e.auth.bcryptCost = bcrypt.MinCost
	e.users = NewUserService(e.store.Users(), nil, log)
	e.posts = NewPostService(e.store.Posts(), e.store.Users(), e.uploader, e.events, e.pusher, log)
	return e
}

func (e *env) register(t *testing.T, first, last, email string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  "Passw0rd!",
	}, nil)
	require.NoError(t, err)
	return u
}

func (e *env) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	feed, err := e.posts.Create(context.Background(), author.ID.Hex(), CreatePostInput{Description: text}, nil)
	require.NoError(t, err)
	for i := range feed {
		if feed[i].UserID == author.ID && feed[i].Description == text {
			return &feed[i]
		}
	}
	t.Fatalf("post %q not in feed", text)
	return nil
}
