// Package proposals stores proposals and enforces their single answer.
package proposals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/proposals/internal/server/models"
)

// Repository persists proposals.
//
// Create returns false without error when the owner already has a proposal.
// MarkAnswered sets the answer only while the proposal is unanswered and
// reports common.ErrAlreadyAnswered otherwise; of any number of concurrent
// calls for one token at most one succeeds. Lookups report
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, p *models.Proposal) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	GetByToken(ctx context.Context, token string) (*models.Proposal, error)
	GetByOwner(ctx context.Context, ownerID string) (*models.Proposal, error)
	MarkAnswered(ctx context.Context, token string, answer models.Answer, at time.Time) (*models.Proposal, error)
}
