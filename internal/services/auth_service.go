package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/models"
	"github.com/thereayou/blog-api/pkg/auth"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrDuplicateUser      = errors.New("email or username already registered")
	ErrMissingLoginFields = errors.New("login requires a password and an email or username")
	ErrEmailNotFound      = errors.New("no user with this email")
	ErrUsernameNotFound   = errors.New("no user with this username")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownIdentity    = errors.New("user no longer exists")
)

type TokenManager interface {
	Generate(userID uint) (string, error)
	Expiry(token string) (time.Time, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

type AuthService struct {
	users   UserStore
	tokens  TokenManager
	revoker auth.Revoker
	logger  *logrus.Logger
}

func NewAuthService(users UserStore, tokens TokenManager, revoker auth.Revoker, logger *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoker: revoker, logger: logger}
}

// Register creates the user and returns a fresh token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, "", ErrEmailTaken
	}
	taken, err = s.users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", fmt.Errorf("save user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, token, nil
}

// Login accepts an email or a username; email wins when both are given.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Password == "" || (in.Email == "" && in.Username == "") {
		return nil, "", ErrMissingLoginFields
	}

	var (
		user *models.User
		err  error
	)
	if in.Email != "" {
		user, err = s.users.FindUserByEmail(ctx, in.Email)
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrEmailNotFound
		}
	} else {
		user, err = s.users.FindUserByUsername(ctx, in.Username)
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrUsernameNotFound
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Identity resolves a token subject to the user it names.
func (s *AuthService) Identity(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Logout revokes token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	exp, err := s.tokens.Expiry(token)
	if err != nil {
		return err
	}
	return s.revoker.Revoke(ctx, token, exp)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
