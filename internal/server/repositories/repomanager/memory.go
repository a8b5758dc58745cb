package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/proposals/internal/dbx"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/proposals"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. It ignores
// the DBTX argument and always returns the same repositories.
//
// WithTx serializes callbacks but cannot undo writes made before an error.
type InMemoryRepositoryManager struct {
	txMu          sync.Mutex
	users         *users.MemoryRepository
	proposals     *proposals.MemoryRepository
	notifications *notifications.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		proposals:     proposals.NewMemoryRepository(),
		notifications: notifications.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Kind() string { return "memory" }

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX { return nil }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Proposals(dbx.DBTX) proposals.Repository { return m.proposals }

func (m *InMemoryRepositoryManager) Notifications(dbx.DBTX) notifications.Repository {
	return m.notifications
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
