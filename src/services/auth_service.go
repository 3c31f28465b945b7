package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"papertrade/src/config"
	"papertrade/src/models"
	"papertrade/src/repositories"
	"papertrade/src/schemas"
	aws_handler "papertrade/src/utils/aws"
)

// AuthService owns registration, credential verification and JWT issuance.
// The trade path never touches it; it only consumes the user identity the
// token middleware resolves.
type AuthService struct {
	users        repositories.UserRepository
	tokenAuth    *jwtauth.JWTAuth
	tokenTTL     time.Duration
	startingCash decimal.Decimal
}

func NewAuthService(cfg *config.Config, users repositories.UserRepository) (*AuthService, error) {
	secret := cfg.Auth.JWTSecret
	if cfg.Auth.JWTSecretName != "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.Auth.AWSRegion)
		if err != nil {
			return nil, err
		}
		secret, err = awsHandler.SecretManager.GetSecretValue(cfg.Auth.JWTSecretName)
		if err != nil {
			return nil, err
		}
	}
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}

	startingCash, err := decimal.NewFromString(cfg.Auth.StartingCash)
	if err != nil {
		return nil, fmt.Errorf("invalid starting cash %q: %w", cfg.Auth.StartingCash, err)
	}

	return &AuthService{
		users:        users,
		tokenAuth:    jwtauth.New("HS256", []byte(secret), nil),
		tokenTTL:     cfg.Auth.TokenTTL,
		startingCash: startingCash,
	}, nil
}

// Register creates the user together with its starting portfolio.
func (s *AuthService) Register(ctx context.Context, req schemas.RegisterRequest) error {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	err = s.users.Create(ctx, user, s.startingCash)
	if errors.Is(err, repositories.ErrAlreadyExists) {
		// Lost the race with a concurrent registration.
		return ErrUsernameTaken
	}
	return err
}

// Login verifies credentials and issues a signed access token.
func (s *AuthService) Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	_, tokenString, err := s.tokenAuth.Encode(claims)
	if err != nil {
		return nil, err
	}

	return &schemas.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}

// TokenAuth exposes the verifier the router middleware needs.
func (s *AuthService) TokenAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// UserIDFromClaims extracts the authenticated user id. JSON decoding turns
// numeric claims into float64, so both forms are accepted.
func UserIDFromClaims(claims map[string]interface{}) (int64, error) {
	switch v := claims["user_id"].(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("missing or malformed user_id claim")
	}
}
