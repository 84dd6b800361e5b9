// Package storage defines the persistence contracts of the gift registry:
// the repository interfaces callers depend on, the closed error taxonomy
// every repository maps onto, and the bounded connection pool repositories
// share.
//
// Engine-specific code lives in the sqlite and postgres subpackages, each of
// which supplies a Dialect and an Open function returning a *Pool.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmynk/giftregistry/internal/models"
)

// UserStore persists registered users.
// Absent users are reported as a nil *models.User with a nil error.
type UserStore interface {
	// Create hashes in.Password and stores a new user.
	// Returns ErrDuplicate if the email is taken and ErrValidation if the
	// password cannot be hashed.
	Create(ctx context.Context, in models.CreateUser) (*models.User, error)

	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ListAll returns every user. Internal use only: it is not paginated.
	ListAll(ctx context.Context) ([]*models.User, error)

	// Update changes the set fields of in. Returns ErrNotFound if the user
	// does not exist and ErrDuplicate if the new email is taken.
	Update(ctx context.Context, id uuid.UUID, in models.UpdateUser) (*models.User, error)

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// Create stores the group and the creator's membership atomically.
	Create(ctx context.Context, name string, creatorID uuid.UUID) (*models.Group, error)

	FindByID(ctx context.Context, id uuid.UUID) (*models.Group, error)

	// FindByInviteCode matches the code exactly and case-sensitively.
	FindByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// AddMember returns ErrDuplicate if the user is already a member.
	AddMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error)

	// JoinByInviteCode returns ErrNotFound for an unknown code.
	JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (*models.GroupMember, error)

	// GetMembers returns member user IDs in join order.
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)

	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error)
}

// WishlistStore persists wishlist items.
type WishlistStore interface {
	Create(ctx context.Context, groupID, userID uuid.UUID, in models.CreateWishlistItem) (*models.WishlistItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.WishlistItem, error)
	ListByOwner(ctx context.Context, groupID, userID uuid.UUID) ([]*models.WishlistItem, error)
	Update(ctx context.Context, id uuid.UUID, in models.UpdateWishlistItem) (*models.WishlistItem, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ClaimStore persists item claims.
type ClaimStore interface {
	// Claim returns ErrValidation when the claimer owns the item and
	// ErrDuplicate when the item is already claimed.
	Claim(ctx context.Context, itemID, claimerID uuid.UUID) (*models.ItemClaim, error)
	FindByItem(ctx context.Context, itemID uuid.UUID) (*models.ItemClaim, error)
	ListByClaimer(ctx context.Context, userID uuid.UUID) ([]*models.ItemClaim, error)
	MarkPurchased(ctx context.Context, id uuid.UUID) (*models.ItemClaim, error)
	Release(ctx context.Context, id uuid.UUID) (bool, error)
}
