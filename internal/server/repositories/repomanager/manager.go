// Package repomanager vends repository implementations bound to a storage
// backend, plus the migration and transaction hooks services need.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/proposals/internal/dbx"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/notifications"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/proposals"
	"github.com/dmitrijs2005/proposals/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the shared
// connection (Conn) or the transactional handle passed to a WithTx callback.
type RepositoryManager interface {
	Kind() string
	RunMigrations(ctx context.Context) error
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Proposals(db dbx.DBTX) proposals.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Close() error
}
