// Package models defines the core domain records for the gift registry.
//
// # Entities
//
//   - User: a registered account; owns wishlist items and claims
//   - Group: a gift exchange circle, joined through its invite code
//   - GroupMember: one user's membership in one group
//   - WishlistItem: something an owner would like to receive, scoped to a group
//   - ItemClaim: another member's reservation of a wishlist item
//
// Each entity has a New* constructor that generates a random UUID and stamps
// creation time before the record ever reaches storage. Constructors never
// perform I/O; persistence is the job of the repository package.
//
// # Boundary inputs
//
// CreateUser, UpdateUser, CreateGroup, CreateWishlistItem and
// UpdateWishlistItem are the plain inputs callers hand to repositories.
// Optional fields are pointers: nil means "not provided".
//
// # Timestamps
//
// All timestamps are UTC and truncated to microseconds so they survive a
// round-trip through storage unchanged.
package models

import "time"

// Now returns the current time in the precision the models persist.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
