package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &models.User{ID: "u1", Email: "a@b.c", DisplayName: "A"})
	require.NoError(t, err)

	byEmail, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", byID.Email)

	byID.Email = "mutated"
	again, _ := r.GetByID(ctx, "u1")
	assert.Equal(t, "a@b.c", again.Email, "callers get copies")

	_, err = r.GetByEmail(ctx, "A@B.C")
	assert.ErrorIs(t, err, common.ErrorNotFound, "emails are case-sensitive")

	_, err = r.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewMemoryRepository()

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, dup int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, &models.User{ID: string(rune('a' + i)), Email: "same@example.com"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case err == common.ErrEmailAlreadyExists:
				dup++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}
