// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/proposals/internal/server/models"
)

// Repository persists users. Create reports common.ErrEmailAlreadyExists
// when the email is taken; lookups report common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
