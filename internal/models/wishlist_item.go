package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrTitleRequired is returned when a wishlist item has a blank title.
var ErrTitleRequired = errors.New("title is required")

// WishlistItem is something a group member would like to receive.
// It belongs to exactly one group and one owner.
type WishlistItem struct {
	// ID is the unique identifier for the item.
	ID uuid.UUID

	// GroupID is the group the wishlist is shared with.
	GroupID uuid.UUID

	// UserID is the owner of the item.
	UserID uuid.UUID

	// Title is required and never blank.
	Title string

	Description *string

	// Price is an exact decimal amount; Valid is false when no price was given.
	Price decimal.NullDecimal

	URL      *string
	ImageURL *string

	// Priority is a free-form hint such as "high" or "nice to have".
	Priority *string

	CreatedAt time.Time

	// UpdatedAt is refreshed on every field update.
	UpdatedAt time.Time
}

// CreateWishlistItem holds the data needed to add an item to a wishlist.
// Group and owner come from the caller's context.
type CreateWishlistItem struct {
	Title       string
	Description *string
	Price       *decimal.Decimal
	URL         *string
	ImageURL    *string
	Priority    *string
}

// UpdateWishlistItem holds a field-by-field update. Nil fields are left unchanged.
type UpdateWishlistItem struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	URL         *string
	ImageURL    *string
	Priority    *string
}

// NewWishlistItem creates an item owned by userID in groupID.
func NewWishlistItem(groupID, userID uuid.UUID, in CreateWishlistItem) *WishlistItem {
	now := Now()
	item := &WishlistItem{
		ID:          uuid.New(),
		GroupID:     groupID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		ImageURL:    in.ImageURL,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Price != nil {
		item.Price = decimal.NewNullDecimal(*in.Price)
	}
	return item
}

// Validate checks the item's invariants.
func (i *WishlistItem) Validate() error {
	return ValidateTitle(i.Title)
}

// ValidateTitle rejects empty and whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}
