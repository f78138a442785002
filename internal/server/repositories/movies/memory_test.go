package movies

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	a, err := repo.Insert(ctx, &models.Movie{Title: "A", OwnerID: "u1"})
	require.NoError(t, err)
	b, err := repo.Insert(ctx, &models.Movie{Title: "B", OwnerID: "u1"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &models.Movie{Title: "C", OwnerID: "u2"})
	require.NoError(t, err)

	list, err := repo.Find(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"A", "B"}, []string{list[0].Title, list[1].Title})

	n, err := repo.Update(ctx, a.ID, &models.Movie{Title: "A2", OwnerID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.FindOne(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, a.ID, got.ID)

	require.NoError(t, repo.Remove(ctx, b.ID))
	require.NoError(t, repo.Remove(ctx, b.ID))

	_, err = repo.FindOne(ctx, b.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err = repo.Update(ctx, b.ID, &models.Movie{Title: "ghost"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	m, err := repo.Insert(ctx, &models.Movie{Title: "A", OwnerID: "u1"})
	require.NoError(t, err)
	m.Title = "mutated"

	got, err := repo.FindOne(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}
