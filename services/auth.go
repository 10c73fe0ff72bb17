package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"friendzone/apperr"
	"friendzone/media"
	"friendzone/models"
	"friendzone/repository"
	"friendzone/token"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password"

type RegisterInput struct {
	FirstName  string `json:"firstName" form:"firstName" binding:"required,min=2,max=50"`
	LastName   string `json:"lastName" form:"lastName" binding:"required,min=2,max=50"`
	Email      string `json:"email" form:"email" binding:"required,emailaddr,max=254"`
	Password   string `json:"password" form:"password" binding:"required,strongpwd"`
	Location   string `json:"location" form:"location" binding:"max=100"`
	Occupation string `json:"occupation" form:"occupation" binding:"max=100"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	in.Occupation = strings.TrimSpace(in.Occupation)
}

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AuthService struct {
	users      repository.UserRepository
	uploader   media.Uploader
	tokens     *token.Manager
	log        logrus.FieldLogger
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, uploader media.Uploader, tokens *token.Manager, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:      users,
		uploader:   uploader,
		tokens:     tokens,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates an account. picture may be nil, in which case a
// generated avatar is used.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, picture *media.Image) (*models.User, error) {
	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Email is already registered")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, mapErr(err, "User")
	}

	picturePath := media.DefaultAvatar(in.FirstName)
	if picture != nil {
		url, err := s.uploader.Upload(ctx, picture, media.FolderAvatars)
		if err != nil {
			return nil, err
		}
		picturePath = url
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("Failed to register user", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            primitive.NewObjectID(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		PasswordHash:  string(hash),
		PicturePath:   picturePath,
		Friends:       []primitive.ObjectID{},
		Location:      in.Location,
		Occupation:    in.Occupation,
		ViewedProfile: rand.IntN(10000),
		Impressions:   rand.IntN(10000),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapErr(err, "User")
	}

	s.log.WithField("userId", user.ID.Hex()).Info("User registered")
	return user, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Auth(invalidCredentials)
	}
	if err != nil {
		return nil, mapErr(err, "User")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Auth(invalidCredentials)
	}

	tok, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	return &LoginResult{Token: tok, User: user}, nil
}
