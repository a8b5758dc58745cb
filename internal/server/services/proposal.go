package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/dbx"
	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/metrics"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/dmitrijs2005/proposals/internal/server/notify"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// tokenBytes random bytes give a 32 character hex token.
const tokenBytes = 16

// ResponseRecordedMessage acknowledges an accepted answer.
const ResponseRecordedMessage = "Response recorded successfully"

// Ack is returned to the recipient after their answer is stored.
type Ack struct {
	ProposalID   string
	Response     models.Answer
	Message      string
	Notification string
}

// StatusView is what an owner sees when polling their proposal.
type StatusView struct {
	ProposalID   string
	Answered     bool
	Response     models.Answer
	Notification string
	AnsweredAt   *time.Time
}

// ProposalConfig carries the settings ProposalService needs.
type ProposalConfig struct {
	FrontendURL   string
	NotifyTimeout time.Duration
}

// ProposalService creates proposals, records the single answer each one
// may receive and reports their status to the owner.
type ProposalService struct {
	repomanager   repomanager.RepositoryManager
	notifier      notify.Dispatcher
	metrics       *metrics.Metrics
	logger        logging.Logger
	frontendURL   string
	notifyTimeout time.Duration
	now           func() time.Time
}

func NewProposalService(m repomanager.RepositoryManager, n notify.Dispatcher, mt *metrics.Metrics, l logging.Logger, cfg ProposalConfig) *ProposalService {
	timeout := cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProposalService{
		repomanager:   m,
		notifier:      n,
		metrics:       mt,
		logger:        l.With("module", "proposal_service"),
		frontendURL:   cfg.FrontendURL,
		notifyTimeout: timeout,
		now:           time.Now,
	}
}

// Create gives ownerEmail's account its proposal. An account has at most
// one; when it already exists it is returned with created=false.
func (s *ProposalService) Create(ctx context.Context, ownerEmail string) (*models.Proposal, bool, error) {
	owner, err := s.resolveRequester(ctx, ownerEmail)
	if err != nil {
		return nil, false, err
	}

	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, false, fmt.Errorf("error generating token: %w", err)
	}

	p := &models.Proposal{
		ID:            uuid.NewString(),
		OwnerID:       owner.ID,
		Token:         token,
		ShareableLink: s.shareableLink(token),
		CreatedAt:     s.now().UTC(),
	}

	repo := s.repomanager.Proposals(s.repomanager.Conn())
	inserted, err := repo.Create(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("error creating proposal: %w", err)
	}

	if !inserted {
		existing, err := repo.GetByOwner(ctx, owner.ID)
		if err != nil {
			return nil, false, fmt.Errorf("error loading existing proposal: %w", err)
		}
		return existing, false, nil
	}

	s.metrics.ProposalCreated()
	s.logger.Info(ctx, "proposal created", "proposal_id", p.ID, "owner_id", owner.ID)
	return p, true, nil
}

// Mine returns the proposal owned by ownerEmail's account.
func (s *ProposalService) Mine(ctx context.Context, ownerEmail string) (*models.Proposal, error) {
	owner, err := s.resolveRequester(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Proposals(s.repomanager.Conn()).GetByOwner(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading proposal: %w", err)
	}
	return p, nil
}

// Respond records rawAnswer for the proposal identified by token.
//
// The answer and the owner's in-app notification are written in one
// transaction through a conditional update, so among concurrent callers
// exactly one succeeds. The owner email goes out after commit and its
// failure never fails the call.
func (s *ProposalService) Respond(ctx context.Context, token, rawAnswer string) (*Ack, error) {
	repo := s.repomanager.Proposals(s.repomanager.Conn())

	p, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading proposal: %w", err)
	}

	if p.Answered() {
		s.metrics.ResponseConflict()
		return nil, common.ErrAlreadyAnswered
	}

	answer, ok := models.ParseAnswer(rawAnswer)
	if !ok {
		return nil, common.ErrInvalidAnswer
	}

	now := s.now().UTC()
	note := models.Notification{
		UserID:     p.OwnerID,
		ProposalID: p.ID,
		Message:    models.NotificationMessage(answer),
		CreatedAt:  now,
	}
	note.ID, err = newNotificationID(now)
	if err != nil {
		return nil, fmt.Errorf("error generating notification id: %w", err)
	}

	var answered *models.Proposal
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		answered, err = s.repomanager.Proposals(tx).MarkAnswered(ctx, token, answer, now)
		if err != nil {
			return err
		}
		return s.repomanager.Notifications(tx).Create(ctx, &note)
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyAnswered) {
			s.metrics.ResponseConflict()
			return nil, err
		}
		return nil, fmt.Errorf("error recording response: %w", err)
	}

	s.metrics.ResponseRecorded(string(answer))
	s.logger.Info(ctx, "proposal answered", "proposal_id", answered.ID, "response", string(answer))

	s.notifyOwner(ctx, answered)

	return &Ack{
		ProposalID:   answered.ID,
		Response:     answer,
		Message:      ResponseRecordedMessage,
		Notification: note.Message,
	}, nil
}

// Status reports the proposal's state to its owner. Anyone else gets
// common.ErrForbidden.
func (s *ProposalService) Status(ctx context.Context, proposalID, requesterEmail string) (*StatusView, error) {
	requester, err := s.resolveRequester(ctx, requesterEmail)
	if err != nil {
		return nil, err
	}

	p, err := s.repomanager.Proposals(s.repomanager.Conn()).GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading proposal: %w", err)
	}

	if p.OwnerID != requester.ID {
		return nil, common.ErrForbidden
	}

	view := &StatusView{
		ProposalID: p.ID,
		Answered:   p.Answered(),
		Response:   p.Response,
		AnsweredAt: p.RespondedAt,
	}
	if view.Answered {
		view.Notification = models.NotificationMessage(p.Response)
	}
	return view, nil
}

// Notifications lists the in-app notices for userEmail's account, newest first.
func (s *ProposalService) Notifications(ctx context.Context, userEmail string) ([]models.Notification, error) {
	user, err := s.resolveRequester(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Notifications(s.repomanager.Conn()).ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	return list, nil
}

// notifyOwner emails the owner. It runs with its own deadline and ignores
// the caller's cancellation so a client hanging up does not drop the mail.
func (s *ProposalService) notifyOwner(ctx context.Context, p *models.Proposal) {
	owner, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, p.OwnerID)
	if err != nil {
		s.metrics.NotificationFailed()
		s.logger.Warn(ctx, "notification skipped: owner lookup failed", "proposal_id", p.ID, "error", err)
		return
	}

	msg, err := notify.Render(owner.Email, p.Response, p.ShareableLink)
	if err != nil {
		s.metrics.NotificationFailed()
		s.logger.Error(ctx, "notification render failed", "proposal_id", p.ID, "error", err)
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Dispatch(dctx, msg); err != nil {
		s.metrics.NotificationFailed()
		s.logger.Warn(ctx, "notification delivery failed", "proposal_id", p.ID, "error", err)
		return
	}
	s.logger.Debug(ctx, "notification delivered", "proposal_id", p.ID)
}

// resolveRequester maps an authenticated email to its account. A valid token
// for a vanished account is treated as unauthenticated.
func (s *ProposalService) resolveRequester(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

func (s *ProposalService) shareableLink(token string) string {
	sep := "?"
	if strings.Contains(s.frontendURL, "?") {
		sep = "&"
	}
	return s.frontendURL + sep + "proposal=" + token
}

func newNotificationID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
