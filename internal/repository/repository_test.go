package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
	"github.com/mmynk/giftregistry/internal/storage/sqlite"
)

// newTestPool opens a fresh SQLite database in a per-test directory.
func newTestPool(t *testing.T, opts storage.PoolOptions) *storage.Pool {
	t.Helper()

	pool, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func newTestSet(t *testing.T, opts ...Option) (*Set, *storage.Pool) {
	t.Helper()

	pool := newTestPool(t, storage.DefaultPoolOptions())
	return NewSet(pool, opts...), pool
}

func createUser(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()

	user, err := users.Create(context.Background(), models.CreateUser{
		Email:    email,
		Fname:    "Test",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func countRows(t *testing.T, pool *storage.Pool, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, pool.DB().QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func TestPool_AcquireTimeout(t *testing.T) {
	pool := newTestPool(t, storage.PoolOptions{MaxConns: 1, AcquireTimeout: 50 * time.Millisecond})
	users := NewUserRepository(pool)
	ctx := context.Background()

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)

	_, err = users.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrDatabase)

	require.NoError(t, held.Close())

	user, err := users.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestPool_ContextCancelled(t *testing.T) {
	set, _ := newTestSet(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := set.Users.ListAll(ctx)
	require.ErrorIs(t, err, storage.ErrDatabase)
}
