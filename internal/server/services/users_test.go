package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	cfg := &config.Config{SecretKey: "k", TokenValidity: time.Hour}
	return NewUserService(repomanager.NewInMemoryRepositoryManager(), cfg)
}

func TestUserService_RegisterLoginAuthenticate(t *testing.T) {
	s := newUserService(t)
	ctx := context.Background()

	tok, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	regOwner, err := s.Authenticate(tok)
	require.NoError(t, err)

	tok, err = s.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	loginOwner, err := s.Authenticate(tok)
	require.NoError(t, err)

	assert.Equal(t, regOwner, loginOwner)
}

func TestUserService_RegisterErrors(t *testing.T) {
	s := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, " ", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	_, err = s.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrUserExists)
}

func TestUserService_LoginFailures(t *testing.T) {
	s := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = s.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestUserService_AuthenticateRejectsGarbage(t *testing.T) {
	s := newUserService(t)

	_, err := s.Authenticate("garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
