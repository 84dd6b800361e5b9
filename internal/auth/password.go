// Package auth hashes and verifies user passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
)

// Cost is the bcrypt work factor. It is fixed, not caller-tunable.
const Cost = bcrypt.DefaultCost

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// HashPassword returns a salted bcrypt hash of password.
// Hashing the same password twice yields different hashes.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserStore defines the user persistence the authenticator needs.
// This allows the authenticator to be independent of the storage implementation.
type UserStore interface {
	Create(ctx context.Context, in models.CreateUser) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	users UserStore
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(users UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return storage.Validation(ErrWeakPassword.Error())
	}
	return nil
}

// Register creates a new user account. The store hashes the password and
// reports a taken email as storage.ErrDuplicate; there is no pre-check.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, fname, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	return a.users.Create(ctx, models.CreateUser{
		Email:    email,
		Fname:    fname,
		Password: credential,
	})
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a comparison so unknown emails cost the same as wrong passwords.
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(credential))
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(user.PassHash, credential) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), Cost)
	return hashed
})
