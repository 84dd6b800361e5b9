package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
)

const claimColumns = "id, item_id, claimed_by, purchased, claimed_at"

// ownItemReason rejects claims on the claimer's own item.
const ownItemReason = "users cannot claim their own wishlist items"

var _ storage.ClaimStore = (*ClaimRepository)(nil)

// ClaimRepository persists item claims. An item has at most one claim.
type ClaimRepository struct {
	base
}

func NewClaimRepository(pool *storage.Pool, opts ...Option) *ClaimRepository {
	return &ClaimRepository{base: newBase("claim", pool, opts)}
}

// Claim reserves itemID for claimerID.
func (r *ClaimRepository) Claim(ctx context.Context, itemID, claimerID uuid.UUID) (claim *models.ItemClaim, err error) {
	defer r.observe("claim", time.Now(), &err)

	claim = models.NewItemClaim(itemID, claimerID)

	err = r.pool.InTx(ctx, func(q storage.Querier) error {
		var owner uuid.UUID
		err := q.QueryRowContext(ctx, "SELECT user_id FROM wishlist_items WHERE id = ?", itemID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound("Wishlist item")
		}
		if err != nil {
			return r.pool.Translate(err, "")
		}
		if owner == claimerID {
			return storage.Validation(ownItemReason)
		}

		_, err = q.ExecContext(ctx,
			"INSERT INTO item_claims ("+claimColumns+") VALUES (?, ?, ?, ?, ?)",
			claim.ID, claim.ItemID, claim.ClaimedBy, claim.Purchased, toMicros(claim.ClaimedAt),
		)
		return r.pool.Translate(err, fmt.Sprintf("item %s is already claimed", itemID))
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Item claimed", "item_id", itemID, "claimed_by", claimerID)
	return claim, nil
}

// FindByItem returns the claim on itemID, or nil if it is unclaimed.
func (r *ClaimRepository) FindByItem(ctx context.Context, itemID uuid.UUID) (claim *models.ItemClaim, err error) {
	defer r.observe("find_by_item", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		claim, err = scanClaim(q.QueryRowContext(ctx,
			"SELECT "+claimColumns+" FROM item_claims WHERE item_id = ?", itemID,
		))
		if errors.Is(err, sql.ErrNoRows) {
			claim = nil
			return nil
		}
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// ListByClaimer returns everything userID has claimed, oldest first.
func (r *ClaimRepository) ListByClaimer(ctx context.Context, userID uuid.UUID) (claims []*models.ItemClaim, err error) {
	defer r.observe("list_by_claimer", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx,
			"SELECT "+claimColumns+" FROM item_claims WHERE claimed_by = ? ORDER BY claimed_at, id",
			userID,
		)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		defer rows.Close()

		for rows.Next() {
			claim, err := scanClaim(rows)
			if err != nil {
				return r.pool.Translate(err, "")
			}
			claims = append(claims, claim)
		}
		return r.pool.Translate(rows.Err(), "")
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// MarkPurchased sets the purchased flag. The flag never goes back to false,
// so marking twice is harmless.
func (r *ClaimRepository) MarkPurchased(ctx context.Context, id uuid.UUID) (claim *models.ItemClaim, err error) {
	defer r.observe("mark_purchased", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		claim, err = scanClaim(q.QueryRowContext(ctx,
			"UPDATE item_claims SET purchased = ? WHERE id = ? RETURNING "+claimColumns,
			true, id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound("Item claim")
		}
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Claim marked purchased", "claim_id", id)
	return claim, nil
}

// Release deletes the claim with id, freeing the item for someone else.
func (r *ClaimRepository) Release(ctx context.Context, id uuid.UUID) (released bool, err error) {
	defer r.observe("release", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		res, err := q.ExecContext(ctx, "DELETE FROM item_claims WHERE id = ?", id)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		n, err := res.RowsAffected()
		released = n > 0
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

func scanClaim(row scanner) (*models.ItemClaim, error) {
	claim := &models.ItemClaim{}
	var claimedAt int64
	if err := row.Scan(&claim.ID, &claim.ItemID, &claim.ClaimedBy, &claim.Purchased, &claimedAt); err != nil {
		return nil, err
	}
	claim.ClaimedAt = fromMicros(claimedAt)
	return claim, nil
}
