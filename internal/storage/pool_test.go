package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/giftregistry/internal/storage"
	"github.com/mmynk/giftregistry/internal/storage/sqlite"
)

func openPool(t *testing.T, opts storage.PoolOptions) *storage.Pool {
	t.Helper()

	pool, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "pool.db"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
		{"SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"UPDATE t SET a = COALESCE(?, a) WHERE note = 'why?' AND id = ?", "UPDATE t SET a = COALESCE($1, a) WHERE note = 'why?' AND id = $2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.RebindDollar(tt.in))
		})
	}
}

func TestNewPool_Defaults(t *testing.T) {
	pool := openPool(t, storage.PoolOptions{})
	assert.Equal(t, storage.DefaultMaxConns, pool.DB().Stats().MaxOpenConnections)

	pool = openPool(t, storage.PoolOptions{MaxConns: 2})
	assert.Equal(t, 2, pool.DB().Stats().MaxOpenConnections)
}

func TestPool_AcquireTimeout(t *testing.T) {
	pool := openPool(t, storage.PoolOptions{MaxConns: 1, AcquireTimeout: 20 * time.Millisecond})
	ctx := context.Background()

	held, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	_, err = pool.Acquire(ctx)
	require.ErrorIs(t, err, storage.ErrDatabase)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	err = pool.Run(ctx, func(storage.Querier) error {
		t.Fatal("fn must not run without a connection")
		return nil
	})
	require.ErrorIs(t, err, storage.ErrDatabase)
}

func TestPool_InTx(t *testing.T) {
	pool := openPool(t, storage.DefaultPoolOptions())
	ctx := context.Background()

	_, err := pool.DB().ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	count := func() int {
		var n int
		require.NoError(t, pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&n))
		return n
	}

	t.Run("rolls back on error", func(t *testing.T) {
		boom := storage.Validation("boom")
		err := pool.InTx(ctx, func(q storage.Querier) error {
			if _, err := q.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1"); err != nil {
				return err
			}
			return boom
		})
		assert.Same(t, boom, err)
		assert.Equal(t, 0, count())
	})

	t.Run("commits", func(t *testing.T) {
		err := pool.InTx(ctx, func(q storage.Querier) error {
			for _, k := range []string{"a", "b"} {
				if _, err := q.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", k, "1"); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count())
	})

	t.Run("translates unique violation", func(t *testing.T) {
		err := pool.Run(ctx, func(q storage.Querier) error {
			_, err := q.ExecContext(ctx, "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "2")
			return pool.Translate(err, "key a exists")
		})
		require.ErrorIs(t, err, storage.ErrDuplicate)
		assert.Equal(t, "duplicate entry: key a exists", err.Error())
	})
}

func TestPool_Translate(t *testing.T) {
	pool := openPool(t, storage.DefaultPoolOptions())

	assert.NoError(t, pool.Translate(nil, "x"))

	classified := storage.NotFound("User")
	assert.Same(t, classified, pool.Translate(classified, "x"))

	err := pool.Translate(errors.New("syntax error"), "x")
	require.ErrorIs(t, err, storage.ErrDatabase)
	assert.Equal(t, "database error: syntax error", err.Error())
}
