package proposals

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/server/models"
)

// MemoryRepository keeps proposals in process memory. All state changes
// happen under one mutex, which makes MarkAnswered a compare-and-set.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Proposal
	byToken map[string]string
	byOwner map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Proposal),
		byToken: make(map[string]string),
		byOwner: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Proposal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOwner[p.OwnerID]; exists {
		return false, nil
	}

	stored := clone(p)
	r.byID[p.ID] = stored
	r.byToken[p.Token] = p.ID
	r.byOwner[p.OwnerID] = p.ID

	return true, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*models.Proposal, error) {
	r.mu.RLock()
	id, ok := r.byToken[token]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Proposal, error) {
	r.mu.RLock()
	id, ok := r.byOwner[ownerID]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) MarkAnswered(_ context.Context, token string, answer models.Answer, at time.Time) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrAlreadyAnswered
	}

	p := r.byID[id]
	if p.Answered() {
		return nil, common.ErrAlreadyAnswered
	}

	p.Response = answer
	t := at
	p.RespondedAt = &t

	return clone(p), nil
}

func clone(p *models.Proposal) *models.Proposal {
	c := *p
	if p.RespondedAt != nil {
		t := *p.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}
