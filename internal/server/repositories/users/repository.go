// Package users stores accounts for the server's auth endpoints.
package users

import (
	"context"

	"github.com/dmitrijs2005/moviekeeper/internal/server/models"
)

// Repository persists accounts. GetUserByLogin returns common.ErrNotFound
// for unknown names; Create returns common.ErrUserExists for taken ones.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
