package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID

	// Email is the user's email address (unique across all users).
	Email string

	// Fname is the display name of the user.
	Fname string

	// PassHash is the salted bcrypt hash of the user's password.
	// It is never the plaintext.
	PassHash string

	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}

// CreateUser holds the data needed to register a user.
type CreateUser struct {
	Email    string
	Fname    string
	Password string // hashed before storing
}

// UpdateUser holds the user fields that may change after registration.
type UpdateUser struct {
	Fname *string
	Email *string
}

// IsEmpty reports whether the update changes nothing.
func (u UpdateUser) IsEmpty() bool {
	return u.Fname == nil && u.Email == nil
}

// NewUser creates a User with a fresh ID and creation time.
// passHash must already be hashed.
func NewUser(email, fname, passHash string) *User {
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Fname:     fname,
		PassHash:  passHash,
		CreatedAt: Now(),
	}
}
