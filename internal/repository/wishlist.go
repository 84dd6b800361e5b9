package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/giftregistry/internal/models"
	"github.com/mmynk/giftregistry/internal/storage"
)

const wishlistColumns = "id, group_id, user_id, title, description, price, url, image_url, priority, created_at, updated_at"

var _ storage.WishlistStore = (*WishlistRepository)(nil)

// WishlistRepository persists wishlist items.
type WishlistRepository struct {
	base
}

func NewWishlistRepository(pool *storage.Pool, opts ...Option) *WishlistRepository {
	return &WishlistRepository{base: newBase("wishlist", pool, opts)}
}

// Create adds an item owned by userID to the wishlist shared in groupID.
func (r *WishlistRepository) Create(ctx context.Context, groupID, userID uuid.UUID, in models.CreateWishlistItem) (item *models.WishlistItem, err error) {
	defer r.observe("create", time.Now(), &err)

	item = models.NewWishlistItem(groupID, userID, in)
	if err := item.Validate(); err != nil {
		return nil, storage.Validation(err.Error())
	}

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO wishlist_items ("+wishlistColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			item.ID, item.GroupID, item.UserID, item.Title,
			nullable(item.Description), item.Price, nullable(item.URL), nullable(item.ImageURL), nullable(item.Priority),
			toMicros(item.CreatedAt), toMicros(item.UpdatedAt),
		)
		return r.pool.Translate(err, "wishlist item already exists")
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Wishlist item created", "item_id", item.ID, "group_id", groupID, "user_id", userID)
	return item, nil
}

// FindByID returns the item with id, or nil if there is none.
func (r *WishlistRepository) FindByID(ctx context.Context, id uuid.UUID) (item *models.WishlistItem, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		item, err = scanWishlistItem(q.QueryRowContext(ctx,
			"SELECT "+wishlistColumns+" FROM wishlist_items WHERE id = ?", id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			item = nil
			return nil
		}
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByGroup returns every item shared in groupID, oldest first.
func (r *WishlistRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) (items []*models.WishlistItem, err error) {
	defer r.observe("list_by_group", time.Now(), &err)

	return r.list(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist_items WHERE group_id = ? ORDER BY created_at, id",
		groupID,
	)
}

// ListByOwner returns userID's items in groupID, oldest first.
func (r *WishlistRepository) ListByOwner(ctx context.Context, groupID, userID uuid.UUID) (items []*models.WishlistItem, err error) {
	defer r.observe("list_by_owner", time.Now(), &err)

	return r.list(ctx,
		"SELECT "+wishlistColumns+" FROM wishlist_items WHERE group_id = ? AND user_id = ? ORDER BY created_at, id",
		groupID, userID,
	)
}

// Update applies the set fields of in and refreshes updated_at. The change
// is one statement, so concurrent updates to different fields never lose
// each other's writes.
func (r *WishlistRepository) Update(ctx context.Context, id uuid.UUID, in models.UpdateWishlistItem) (item *models.WishlistItem, err error) {
	defer r.observe("update", time.Now(), &err)

	if in.Title != nil {
		if err := models.ValidateTitle(*in.Title); err != nil {
			return nil, storage.Validation(err.Error())
		}
	}

	var price decimal.NullDecimal
	if in.Price != nil {
		price = decimal.NewNullDecimal(*in.Price)
	}

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		item, err = scanWishlistItem(q.QueryRowContext(ctx, `
			UPDATE wishlist_items SET
				title = COALESCE(?, title),
				description = COALESCE(?, description),
				price = COALESCE(?, price),
				url = COALESCE(?, url),
				image_url = COALESCE(?, image_url),
				priority = COALESCE(?, priority),
				updated_at = ?
			WHERE id = ?
			RETURNING `+wishlistColumns,
			nullable(in.Title), nullable(in.Description), price, nullable(in.URL), nullable(in.ImageURL), nullable(in.Priority),
			toMicros(models.Now()), id,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFound("Wishlist item")
		}
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Wishlist item updated", "item_id", id)
	return item, nil
}

// Delete removes the item with id and reports whether it existed.
// Claims on the item go with it.
func (r *WishlistRepository) Delete(ctx context.Context, id uuid.UUID) (deleted bool, err error) {
	defer r.observe("delete", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		res, err := q.ExecContext(ctx, "DELETE FROM wishlist_items WHERE id = ?", id)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *WishlistRepository) list(ctx context.Context, query string, args ...any) ([]*models.WishlistItem, error) {
	var items []*models.WishlistItem
	err := r.pool.Run(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scanWishlistItem(rows)
			if err != nil {
				return r.pool.Translate(err, "")
			}
			items = append(items, item)
		}
		return r.pool.Translate(rows.Err(), "")
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func scanWishlistItem(row scanner) (*models.WishlistItem, error) {
	item := &models.WishlistItem{}
	var (
		description, url, imageURL, priority sql.NullString
		createdAt, updatedAt                 int64
	)
	if err := row.Scan(
		&item.ID,
		&item.GroupID,
		&item.UserID,
		&item.Title,
		&description,
		&item.Price,
		&url,
		&imageURL,
		&priority,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	item.Description = stringPtr(description)
	item.URL = stringPtr(url)
	item.ImageURL = stringPtr(imageURL)
	item.Priority = stringPtr(priority)
	item.CreatedAt = fromMicros(createdAt)
	item.UpdatedAt = fromMicros(updatedAt)
	return item, nil
}
