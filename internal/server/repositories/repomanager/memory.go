package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/movies"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory.
type InMemoryRepositoryManager struct {
	mu     sync.Mutex
	users  *users.MemoryRepository
	movies *movies.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		movies: movies.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Movies() movies.Repository { return m.movies }

// InTx serializes fn against other InTx calls.
func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, Repositories{Users: m.users, Movies: m.movies})
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
