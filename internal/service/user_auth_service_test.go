package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/repository"
	"github.com/GTDGit/drapery_api/internal/utils"
)

type memUsers struct {
	byEmail map[string]*models.User
	nextID  int
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.nextID++
	u.ID = m.nextID
	m.byEmail[u.Email] = u
	return nil
}

func TestUserAuthService_Login(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	users := &memUsers{byEmail: map[string]*models.User{}}
	svc := NewUserAuthService(users)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "  Sam@Example.com ", "correct-horse", "Sam")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", created.Email)
	assert.NotEqual(t, "correct-horse", created.PasswordHash)

	token, user, err := svc.Login(ctx, "SAM@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)

	_, _, err = svc.Login(ctx, "sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	created.IsActive = false
	_, _, err = svc.Login(ctx, "sam@example.com", "correct-horse")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestUserAuthService_CreateUserRejectsShortPassword(t *testing.T) {
	svc := NewUserAuthService(&memUsers{byEmail: map[string]*models.User{}})
	_, err := svc.CreateUser(context.Background(), "a@b.c", "short", "A")
	assert.Error(t, err)
}
