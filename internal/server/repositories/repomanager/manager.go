// Package repomanager vends the server's repositories for the configured
// storage backend and runs their schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/movies"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/users"
)

// Repositories is the set of repositories bound to one unit of work.
type Repositories struct {
	Users  users.Repository
	Movies movies.Repository
}

// RepositoryManager hands out repositories and scopes multi-step work.
// InTx runs fn so that no other InTx call interleaves with it; on error
// nothing fn wrote through the given repositories is kept (Postgres) or
// the error is simply returned (memory, whose writes are single-step).
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Movies() movies.Repository
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
