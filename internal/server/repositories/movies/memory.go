package movies

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory, in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Movie
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) indexOf(id string) int {
	return slices.IndexFunc(r.items, func(m models.Movie) bool { return m.ID == id })
}

func (r *MemoryRepository) Find(_ context.Context, ownerID string) ([]*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Movie, 0)
	for _, m := range r.items {
		if m.OwnerID == ownerID {
			m := m
			result = append(result, &m)
		}
	}
	return result, nil
}

func (r *MemoryRepository) FindOne(_ context.Context, id string) (*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, common.ErrNotFound
	}
	m := r.items[i]
	return &m, nil
}

func (r *MemoryRepository) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *movie
	m.ID = uuid.NewString()
	r.items = append(r.items, m)

	return &m, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, movie *models.Movie) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return 0, nil
	}
	m := *movie
	m.ID = id
	r.items[i] = m

	return 1, nil
}

func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		r.items = slices.Delete(r.items, i, i+1)
	}
	return nil
}
