// Package notifications stores in-app notices for proposal owners.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/proposals/internal/server/models"
)

// Repository persists notifications. ListByUser returns newest first.
type Repository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
}
