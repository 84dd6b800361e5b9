package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// InviteCodeLength is the number of characters in a group invite code.
const InviteCodeLength = 8

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Group represents a gift exchange group.
type Group struct {
	// ID is the unique identifier for the group.
	ID uuid.UUID

	// Name is the display name of the group (e.g., "Holiday 2024").
	Name string

	// InviteCode is the 8-character alphanumeric code new members join with.
	// Unique across all groups; matched exactly and case-sensitively.
	InviteCode string

	// CreatorID references the user who created the group.
	CreatorID uuid.UUID

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// CreateGroup holds the data needed to create a group.
// The creator comes from the caller's authenticated context.
type CreateGroup struct {
	Name string
}

// NewGroup creates a Group with a fresh ID and creation time. inviteCode
// normally comes from GenerateInviteCode.
func NewGroup(name string, creatorID uuid.UUID, inviteCode string) *Group {
	return &Group{
		ID:         uuid.New(),
		Name:       name,
		InviteCode: inviteCode,
		CreatorID:  creatorID,
		CreatedAt:  Now(),
	}
}

// GenerateInviteCode returns a random code of InviteCodeLength characters
// drawn uniformly from A-Z, a-z and 0-9. Codes may collide; storage enforces
// uniqueness.
func GenerateInviteCode() string {
	max := big.NewInt(int64(len(inviteAlphabet)))
	code := make([]byte, InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code)
}

// IsInviteCode reports whether s has the shape of an invite code.
func IsInviteCode(s string) bool {
	if len(s) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
