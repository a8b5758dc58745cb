package notifications

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/proposals/internal/server/models"
)

// MemoryRepository keeps notifications in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]models.Notification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string][]models.Notification)}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[n.UserID] = append(r.byUser[n.UserID], *n)
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.RLock()
	out := append([]models.Notification{}, r.byUser[userID]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
