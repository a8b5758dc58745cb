package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/proposals/internal/dbx"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryManager_SharesRepositories(t *testing.T) {
	t.Parallel()
	var m RepositoryManager = NewInMemoryRepositoryManager()
	ctx := context.Background()

	assert.Equal(t, "memory", m.Kind())
	assert.Nil(t, m.Conn())
	require.NoError(t, m.RunMigrations(ctx))

	_, err := m.Users(m.Conn()).Create(ctx, &models.User{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := m.Users(tx).GetByEmail(ctx, "a@b.c")
		if err != nil {
			return err
		}
		assert.Equal(t, "u1", u.ID)
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.WithTx(ctx, func(context.Context, dbx.DBTX) error { return boom }), boom)
	assert.NoError(t, m.Close())
}
