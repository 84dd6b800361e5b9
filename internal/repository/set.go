package repository

import "github.com/mmynk/giftregistry/internal/storage"

// Set bundles one repository per entity over a shared pool.
type Set struct {
	Users    *UserRepository
	Groups   *GroupRepository
	Wishlist *WishlistRepository
	Claims   *ClaimRepository
}

// NewSet builds every repository over pool with the same options.
func NewSet(pool *storage.Pool, opts ...Option) *Set {
	return &Set{
		Users:    NewUserRepository(pool, opts...),
		Groups:   NewGroupRepository(pool, opts...),
		Wishlist: NewWishlistRepository(pool, opts...),
		Claims:   NewClaimRepository(pool, opts...),
	}
}
