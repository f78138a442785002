package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/cryptox"
	"github.com/dmitrijs2005/moviekeeper/internal/server/auth"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
	"github.com/dmitrijs2005/moviekeeper/internal/server/models"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
)

// UserService registers accounts and issues bearer tokens.
type UserService struct {
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
	}
}

// Register creates an account and returns a token for it.
func (s *UserService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	u, err := s.repomanager.Users().Create(ctx, &models.User{
		UserName:     username,
		PasswordHash: cryptox.HashPassword(password),
	})
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return "", err
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return auth.IssueToken(u.ID, s.jwtSecret, s.tokenValidity)
}

// Login checks credentials and returns a fresh token. Unknown users and
// wrong passwords both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repomanager.Users().GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return "", common.ErrUnauthorized
	}

	return auth.IssueToken(u.ID, s.jwtSecret, s.tokenValidity)
}

// Authenticate resolves a bearer token to its owner ID.
func (s *UserService) Authenticate(token string) (string, error) {
	return auth.OwnerFromToken(token, s.jwtSecret)
}
