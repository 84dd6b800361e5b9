package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemClaim is a member's reservation of someone else's wishlist item.
type ItemClaim struct {
	ID     uuid.UUID
	ItemID uuid.UUID

	// ClaimedBy is the user who intends to buy the item.
	ClaimedBy uuid.UUID

	// Purchased only ever moves from false to true.
	Purchased bool

	ClaimedAt time.Time
}

// NewItemClaim creates an unpurchased claim.
func NewItemClaim(itemID, claimedBy uuid.UUID) *ItemClaim {
	return &ItemClaim{
		ID:        uuid.New(),
		ItemID:    itemID,
		ClaimedBy: claimedBy,
		Purchased: false,
		ClaimedAt: Now(),
	}
}
