package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/giftregistry/internal/auth"
	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
)

const userColumns = "id, email, fname, pass_hash, created_at"

// Ensure UserRepository implements storage.UserStore
var _ storage.UserStore = (*UserRepository)(nil)

// UserRepository persists users and owns password hashing.
type UserRepository struct {
	base
}

// NewUserRepository creates a UserRepository over pool.
func NewUserRepository(pool *storage.Pool, opts ...Option) *UserRepository {
	return &UserRepository{base: newBase("user", pool, opts)}
}

// Create hashes the password and inserts a new user.
func (r *UserRepository) Create(ctx context.Context, in models.CreateUser) (user *models.User, err error) {
	defer r.observe("create", time.Now(), &err)

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, storage.Validation(fmt.Sprintf("password hashing failed: %v", err))
	}

	user = models.NewUser(in.Email, in.Fname, hashed)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?)",
			user.ID, user.Email, user.Fname, user.PassHash, toMicros(user.CreatedAt),
		)
		return r.translate(err, user.Email)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("User created", "user_id", user.ID)
	return user, nil
}

// FindByID returns the user with id, or nil if there is none.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (user *models.User, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// FindByEmail returns the user registered with email, or nil if there is none.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user *models.User, err error) {
	defer r.observe("find_by_email", time.Now(), &err)

	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// ListAll returns every user in registration order.
// Intended for internal and debugging use; it reads the whole table.
func (r *UserRepository) ListAll(ctx context.Context) (users []*models.User, err error) {
	defer r.observe("list_all", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
		if err != nil {
			return r.translate(err, "")
		}
		defer rows.Close()

		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return r.translate(err, "")
			}
			users = append(users, user)
		}
		return r.translate(rows.Err(), "")
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update changes the user's display name and/or email.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, in models.UpdateUser) (user *models.User, err error) {
	defer r.observe("update", time.Now(), &err)

	if in.IsEmpty() {
		user, err = r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
		if err == nil && user == nil {
			err = storage.NotFound("User")
		}
		return user, err
	}

	var (
		sets []string
		args []any
	)
	if in.Fname != nil {
		sets = append(sets, "fname = ?")
		args = append(args, *in.Fname)
	}
	if in.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *in.Email)
	}
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ? RETURNING " + userColumns

	var email string
	if in.Email != nil {
		email = *in.Email
	}

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		user, err = scanUser(q.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound("User")
		}
		return r.translate(err, email)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("User updated", "user_id", id)
	return user, nil
}

// Delete removes the user with id. Deleting a missing user is not an
// error; it reports false.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) (deleted bool, err error) {
	defer r.observe("delete", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		res, err := q.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return r.translate(err, "")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return r.translate(err, "")
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		r.logger.Info("User deleted", "user_id", id)
	}
	return deleted, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user *models.User
	err := r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		user, err = scanUser(q.QueryRowContext(ctx, query, arg))
		if errors.Is(err, sql.ErrNoRows) {
			user = nil
			return nil
		}
		return r.translate(err, "")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// translate maps a storage failure; the only uniqueness constraint on users
// is the email.
func (r *UserRepository) translate(err error, email string) error {
	return r.pool.Translate(err, fmt.Sprintf("email %s is already registered", email))
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Email, &user.Fname, &user.PassHash, &createdAt); err != nil {
		return nil, err
	}
	user.CreatedAt = fromMicros(createdAt)
	return user, nil
}
