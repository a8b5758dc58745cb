package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/logging"
	"github.com/dmitrijs2005/proposals/internal/server/metrics"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/dmitrijs2005/proposals/internal/server/notify"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	sent   []notify.Message
	ctxErr []error
	err    error
	block  bool
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, msg notify.Message) error {
	if f.block {
		<-ctx.Done()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	f.ctxErr = append(f.ctxErr, ctx.Err())
	return f.err
}

type proposalFixture struct {
	rm    *repomanager.InMemoryRepositoryManager
	users *UserService
	svc   *ProposalService
	disp  *fakeDispatcher
}

func newProposalFixture(t *testing.T, cfg ProposalConfig) *proposalFixture {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	disp := &fakeDispatcher{}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://front.example/index.html"
	}
	return &proposalFixture{
		rm:    rm,
		users: newTestUserService(t, rm, &stubIssuer{token: "t"}),
		svc:   NewProposalService(rm, disp, metrics.New(), logging.Nop{}, cfg),
		disp:  disp,
	}
}

func (f *proposalFixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), email, "pw", "")
	require.NoError(t, err)
	return u
}

func TestProposalService_Create(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	owner := f.register(t, "owner@example.com")

	p, created, err := f.svc.Create(context.Background(), "owner@example.com")
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, owner.ID, p.OwnerID)
	assert.Len(t, p.Token, 32)
	assert.Equal(t, "http://front.example/index.html?proposal="+p.Token, p.ShareableLink)
	assert.False(t, p.Answered())
	assert.Nil(t, p.RespondedAt)
}

func TestProposalService_Create_ReturnsExisting(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	first, created, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Token, second.Token)
}

func TestProposalService_Create_UnknownOwner(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})

	_, _, err := f.svc.Create(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestProposalService_Create_TokensDiffer(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "a@example.com")
	f.register(t, "b@example.com")
	ctx := context.Background()

	a, _, err := f.svc.Create(ctx, "a@example.com")
	require.NoError(t, err)
	b, _, err := f.svc.Create(ctx, "b@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProposalService_ShareableLink_ExistingQuery(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{FrontendURL: "https://x.example/app?lang=en"})
	assert.Equal(t, "https://x.example/app?lang=en&proposal=abc", f.svc.shareableLink("abc"))
}

func TestProposalService_Respond_Yes(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	owner := f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	ack, err := f.svc.Respond(ctx, p.Token, "yes")
	require.NoError(t, err)

	assert.Equal(t, p.ID, ack.ProposalID)
	assert.Equal(t, models.AnswerYes, ack.Response)
	assert.Equal(t, ResponseRecordedMessage, ack.Message)
	assert.Equal(t, models.NotificationMessage(models.AnswerYes), ack.Notification)

	require.Len(t, f.disp.sent, 1)
	assert.Equal(t, "owner@example.com", f.disp.sent[0].To)
	assert.Contains(t, f.disp.sent[0].Subject, "Accepted")

	notes, err := f.svc.Notifications(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, owner.ID, notes[0].UserID)
	assert.Equal(t, p.ID, notes[0].ProposalID)
	assert.Len(t, notes[0].ID, 26)
}

func TestProposalService_Respond_No(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	ack, err := f.svc.Respond(ctx, p.Token, "NO")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerNo, ack.Response)
	assert.Equal(t, models.NotificationMessage(models.AnswerNo), ack.Notification)
}

func TestProposalService_Respond_UnknownToken(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})

	_, err := f.svc.Respond(context.Background(), "nope", "YES")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, f.disp.sent)
}

func TestProposalService_Respond_InvalidAnswer(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, p.Token, "maybe")
	assert.ErrorIs(t, err, common.ErrInvalidAnswer)

	// proposal stays open
	ack, err := f.svc.Respond(ctx, p.Token, "YES")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerYes, ack.Response)
}

func TestProposalService_Respond_AlreadyAnsweredWinsOverInvalid(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, p.Token, "YES")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, p.Token, "NO")
	assert.ErrorIs(t, err, common.ErrAlreadyAnswered)

	_, err = f.svc.Respond(ctx, p.Token, "garbage")
	assert.ErrorIs(t, err, common.ErrAlreadyAnswered)

	view, err := f.svc.Status(ctx, p.ID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerYes, view.Response)
	assert.Len(t, f.disp.sent, 1)
}

func TestProposalService_Respond_Concurrent(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
		winner   models.Answer
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer := "YES"
			if i%2 == 1 {
				answer = "NO"
			}
			ack, err := f.svc.Respond(ctx, p.Token, answer)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
				winner = ack.Response
			case errors.Is(err, common.ErrAlreadyAnswered):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)

	view, err := f.svc.Status(ctx, p.ID, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, view.Answered)
	assert.Equal(t, winner, view.Response)
	assert.NotNil(t, view.AnsweredAt)
	assert.Equal(t, models.NotificationMessage(winner), view.Notification)

	notes, err := f.svc.Notifications(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Len(t, f.disp.sent, 1)
}

func TestProposalService_Respond_DispatchFailureIsNotFatal(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.disp.err = errors.New("smtp down")
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	ack, err := f.svc.Respond(ctx, p.Token, "YES")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerYes, ack.Response)

	view, err := f.svc.Status(ctx, p.ID, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, view.Answered)
}

func TestProposalService_Respond_DispatchTimeout(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{NotifyTimeout: 20 * time.Millisecond})
	f.disp.block = true
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	start := time.Now()
	_, err = f.svc.Respond(ctx, p.Token, "YES")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, f.disp.ctxErr, 1)
	assert.ErrorIs(t, f.disp.ctxErr[0], context.DeadlineExceeded)
}

func TestProposalService_Respond_CallerCancelDoesNotDropNotification(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")

	p, _, err := f.svc.Create(context.Background(), "owner@example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.svc.Respond(ctx, p.Token, "NO")
	require.NoError(t, err)

	require.Len(t, f.disp.ctxErr, 1)
	assert.NoError(t, f.disp.ctxErr[0])
}

func TestProposalService_Status(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	view, err := f.svc.Status(ctx, p.ID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, view.ProposalID)
	assert.False(t, view.Answered)
	assert.Equal(t, models.AnswerNone, view.Response)
	assert.Empty(t, view.Notification)
	assert.Nil(t, view.AnsweredAt)

	_, err = f.svc.Respond(ctx, p.Token, "no")
	require.NoError(t, err)

	view, err = f.svc.Status(ctx, p.ID, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, view.Answered)
	assert.Equal(t, models.AnswerNo, view.Response)
	assert.Equal(t, models.NotificationMessage(models.AnswerNo), view.Notification)
	require.NotNil(t, view.AnsweredAt)
}

func TestProposalService_Status_Forbidden(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	f.register(t, "other@example.com")
	ctx := context.Background()

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	_, err = f.svc.Status(ctx, p.ID, "other@example.com")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestProposalService_Status_NotFound(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")

	_, err := f.svc.Status(context.Background(), "00000000-0000-0000-0000-000000000000", "owner@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProposalService_Mine(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")
	ctx := context.Background()

	_, err := f.svc.Mine(ctx, "owner@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	p, _, err := f.svc.Create(ctx, "owner@example.com")
	require.NoError(t, err)

	got, err := f.svc.Mine(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, strings.HasSuffix(got.ShareableLink, got.Token))
}

func TestProposalService_Notifications_Empty(t *testing.T) {
	f := newProposalFixture(t, ProposalConfig{})
	f.register(t, "owner@example.com")

	notes, err := f.svc.Notifications(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Empty(t, notes)
}
