package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/pkg/config"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := s.users[username]
	return ok, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if s.users == nil {
		s.users = map[string]*models.User{}
	}
	s.users[user.Username] = user
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *stubUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubUserRepo{users: map[string]*models.User{
		"dekanat": {ID: "user-1", Username: "dekanat", PasswordHash: string(hash), Role: models.RoleAdmin},
	}}
	svc := NewAuthService(repo, nil, nil, config.JWTConfig{Secret: "test-secret", Expiration: time.Hour})
	return svc, repo
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "dekanat", Password: "sup3rsecret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "dekanat", Password: "wrongpass"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceSignupRejectsDuplicate(t *testing.T) {
	svc, repo := newAuthFixture(t)

	info, err := svc.Signup(context.Background(), SignupRequest{Username: "newuser", Password: "sup3rsecret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, info.Role)
	assert.NotNil(t, repo.users["newuser"])

	_, err = svc.Signup(context.Background(), SignupRequest{Username: "newuser", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
