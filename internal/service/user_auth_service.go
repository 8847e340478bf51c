package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/repository"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// UserStore is the account persistence used by UserAuthService.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// UserAuthService authenticates staff users of the quote editor.
type UserAuthService struct {
	users UserStore
}

// NewUserAuthService creates a new UserAuthService.
func NewUserAuthService(users UserStore) *UserAuthService {
	return &UserAuthService{users: users}
}

// Login verifies the credentials and returns a session token.
func (s *UserAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("email", email).Msg("Failed to get user by email")
			return "", nil, err
		}
		return "", nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	log.Info().Int("user_id", user.ID).Msg("Login successful")
	return token, user, nil
}

// CreateUser registers a new active staff account.
func (s *UserAuthService) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Name:         name,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
