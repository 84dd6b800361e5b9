package repository

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/giftregistry/internal/auth"
	"github.com/mmynk/giftregistry/internal/metrics"
	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
)

func TestUserRepository_Create(t *testing.T) {
	set, pool := newTestSet(t)
	ctx := context.Background()

	t.Run("hashes password", func(t *testing.T) {
		user, err := set.Users.Create(ctx, models.CreateUser{
			Email:    "alice@example.com",
			Fname:    "Alice",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.NotEqual(t, "s3cret-pass", user.PassHash)
		assert.True(t, auth.CheckPassword(user.PassHash, "s3cret-pass"))
		assert.False(t, user.CreatedAt.IsZero())

		found, err := set.Users.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user, found)
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		a := createUser(t, set.Users, "salt-a@example.com")
		b := createUser(t, set.Users, "salt-b@example.com")
		assert.NotEqual(t, a.PassHash, b.PassHash)
		assert.True(t, auth.CheckPassword(a.PassHash, "password123"))
		assert.True(t, auth.CheckPassword(b.PassHash, "password123"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		createUser(t, set.Users, "dup@example.com")

		_, err := set.Users.Create(ctx, models.CreateUser{
			Email:    "dup@example.com",
			Fname:    "Other",
			Password: "password456",
		})
		require.ErrorIs(t, err, storage.ErrDuplicate)
		assert.Contains(t, err.Error(), "dup@example.com")
		assert.Equal(t, 1, countRows(t, pool, "SELECT COUNT(*) FROM users WHERE email = ?", "dup@example.com"))
	})

	t.Run("password too long to hash", func(t *testing.T) {
		_, err := set.Users.Create(ctx, models.CreateUser{
			Email:    "long@example.com",
			Fname:    "Long",
			Password: strings.Repeat("x", 73),
		})
		require.ErrorIs(t, err, storage.ErrValidation)
		assert.Contains(t, err.Error(), "password hashing failed")

		found, err := set.Users.FindByEmail(ctx, "long@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserRepository_Find(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	user := createUser(t, set.Users, "bob@example.com")

	found, err := set.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.Email, found.Email)
	assert.Equal(t, user.CreatedAt, found.CreatedAt)

	missing, err := set.Users.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = set.Users.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_ListAll(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	users, err := set.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	first := createUser(t, set.Users, "first@example.com")
	second := createUser(t, set.Users, "second@example.com")

	users, err = set.Users.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	ids := []uuid.UUID{users[0].ID, users[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
	assert.False(t, users[1].CreatedAt.Before(users[0].CreatedAt))
}

func TestUserRepository_Update(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	user := createUser(t, set.Users, "carol@example.com")
	taken := createUser(t, set.Users, "taken@example.com")

	t.Run("name only", func(t *testing.T) {
		name := "Carol"
		updated, err := set.Users.Update(ctx, user.ID, models.UpdateUser{Fname: &name})
		require.NoError(t, err)
		assert.Equal(t, "Carol", updated.Fname)
		assert.Equal(t, "carol@example.com", updated.Email)
		assert.Equal(t, user.PassHash, updated.PassHash)
	})

	t.Run("empty update returns current row", func(t *testing.T) {
		current, err := set.Users.Update(ctx, user.ID, models.UpdateUser{})
		require.NoError(t, err)
		assert.Equal(t, "Carol", current.Fname)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := set.Users.Update(ctx, user.ID, models.UpdateUser{Email: &taken.Email})
		require.ErrorIs(t, err, storage.ErrDuplicate)

		found, err := set.Users.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", found.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		name := "Ghost"
		_, err := set.Users.Update(ctx, uuid.New(), models.UpdateUser{Fname: &name})
		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.Equal(t, "User not found", err.Error())

		_, err = set.Users.Update(ctx, uuid.New(), models.UpdateUser{})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	user := createUser(t, set.Users, "dave@example.com")

	deleted, err := set.Users.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := set.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	deleted, err = set.Users.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserRepository_Observability(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	m := metrics.NewRepository(reg)

	pool := newTestPool(t, storage.DefaultPoolOptions())
	users := NewUserRepository(pool, WithLogger(logger), WithMetrics(m))
	ctx := context.Background()

	createUser(t, users, "eve@example.com")
	_, err := users.Create(ctx, models.CreateUser{Email: "eve@example.com", Fname: "Eve", Password: "password123"})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	out := logs.String()
	assert.Contains(t, out, "User created")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "repository=user")
	assert.Contains(t, out, "dialect=sqlite")

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "giftregistry_repository_operation_duration_seconds"))
	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)

	errorsTotal, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range errorsTotal {
		if mf.GetName() != "giftregistry_repository_operation_errors_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == "duplicate" {
					found = true
					assert.Equal(t, float64(1), metric.GetCounter().GetValue())
				}
			}
		}
	}
	assert.True(t, found, "expected a duplicate error sample")
}
