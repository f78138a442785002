// Package movies is the Remote Store: the durable, server-side collection of
// catalog records. It does not check ownership; callers scope access.
package movies

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// Repository is the Remote Store contract.
//
//   - Find lists an owner's records in insertion order.
//   - FindOne returns common.ErrNotFound when id is unknown.
//   - Insert assigns a fresh ID and keeps the given OwnerID.
//   - Update replaces every field except ID and reports rows updated; 0 means
//     the target no longer exists.
//   - Remove is idempotent.
type Repository interface {
	Find(ctx context.Context, ownerID string) ([]*models.Movie, error)
	FindOne(ctx context.Context, id string) (*models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Update(ctx context.Context, id string, movie *models.Movie) (int64, error)
	Remove(ctx context.Context, id string) error
}
