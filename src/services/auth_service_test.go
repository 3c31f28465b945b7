package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/src/config"
	"papertrade/src/models"
	"papertrade/src/repositories"
	"papertrade/src/schemas"
	"papertrade/src/services"
)

type fakeUserRepo struct {
	users        map[string]models.User
	nextID       int64
	startingCash decimal.Decimal
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User, startingCash decimal.Decimal) error {
	if _, ok := f.users[u.Username]; ok {
		return repositories.ErrAlreadyExists
	}
	u.ID = f.nextID
	f.nextID++
	f.startingCash = startingCash
	f.users[u.Username] = *u
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func newAuthService(t *testing.T, repo *fakeUserRepo) *services.AuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.StartingCash = "100000.00"

	svc, err := services.NewAuthService(cfg, repo)
	require.NoError(t, err)
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)
	ctx := context.Background()

	err := svc.Register(ctx, schemas.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	stored := repo.users["alice"]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.Equal(t, "100000", repo.startingCash.String())

	token, err := svc.Login(ctx, schemas.LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)
	ctx := context.Background()

	req := schemas.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"}
	require.NoError(t, svc.Register(ctx, req))

	req.Email = "other@example.com"
	err := svc.Register(ctx, req)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, schemas.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}))

	err := svc.Register(ctx, schemas.RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, schemas.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}))

	_, err := svc.Login(ctx, schemas.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newAuthService(t, newFakeUserRepo())

	_, err := svc.Login(context.Background(), schemas.LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestNewAuthService_MissingSecret(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.StartingCash = "100000.00"

	_, err := services.NewAuthService(cfg, newFakeUserRepo())
	assert.Error(t, err)
}

func TestUserIDFromClaims_RoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, schemas.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}))
	token, err := svc.Login(ctx, schemas.LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	verifier := jwtauth.New("HS256", []byte("test-secret"), nil)
	decoded, err := jwtauth.VerifyToken(verifier, token.AccessToken)
	require.NoError(t, err)

	claims, err := decoded.AsMap(ctx)
	require.NoError(t, err)

	userID, err := services.UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)
}

func TestUserIDFromClaims_Malformed(t *testing.T) {
	_, err := services.UserIDFromClaims(map[string]interface{}{"user_id": "nope"})
	assert.Error(t, err)
}
