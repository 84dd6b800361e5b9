package postgres

import (
	"context"
	"database/sql"
)

// schema mirrors the SQLite one. Prices are unconstrained NUMERIC so any
// scale and magnitude round-trips exactly.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    fname TEXT NOT NULL,
    pass_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    invite_code VARCHAR(8) NOT NULL UNIQUE,
    creator_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    id UUID PRIMARY KEY,
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    joined_at BIGINT NOT NULL,
    UNIQUE (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS wishlist_items (
    id UUID PRIMARY KEY,
    group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    price NUMERIC,
    url TEXT,
    image_url TEXT,
    priority TEXT,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_claims (
    id UUID PRIMARY KEY,
    item_id UUID NOT NULL UNIQUE REFERENCES wishlist_items(id) ON DELETE CASCADE,
    claimed_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    purchased BOOLEAN NOT NULL DEFAULT FALSE,
    claimed_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_wishlist_items_group_id ON wishlist_items(group_id);
CREATE INDEX IF NOT EXISTS idx_item_claims_claimed_by ON item_claims(claimed_by);
`

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
