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

const groupColumns = "id, name, invite_code, creator_id, created_at"

// generateInviteCode is swapped in tests to force collisions.
var generateInviteCode = models.GenerateInviteCode

var _ storage.GroupStore = (*GroupRepository)(nil)

// GroupRepository persists groups and their memberships.
type GroupRepository struct {
	base
}

// NewGroupRepository creates a GroupRepository over pool.
func NewGroupRepository(pool *storage.Pool, opts ...Option) *GroupRepository {
	return &GroupRepository{base: newBase("group", pool, opts)}
}

// Create inserts a new group and makes its creator the first member, in one
// transaction. If the generated invite code is already taken the call fails
// with storage.ErrDuplicate and nothing is written; callers may simply retry.
func (r *GroupRepository) Create(ctx context.Context, name string, creatorID uuid.UUID) (group *models.Group, err error) {
	defer r.observe("create", time.Now(), &err)

	group = models.NewGroup(name, creatorID, generateInviteCode())

	err = r.pool.InTx(ctx, func(q storage.Querier) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO groups ("+groupColumns+") VALUES (?, ?, ?, ?, ?)",
			group.ID, group.Name, group.InviteCode, group.CreatorID, toMicros(group.CreatedAt),
		)
		if err != nil {
			return r.pool.Translate(err, fmt.Sprintf("invite code %s is already in use", group.InviteCode))
		}

		_, err = r.insertMember(ctx, q, group.ID, creatorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Group created", "group_id", group.ID, "creator_id", creatorID)
	return group, nil
}

// FindByID returns the group with id, or nil if there is none.
func (r *GroupRepository) FindByID(ctx context.Context, id uuid.UUID) (group *models.Group, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	return r.findOne(ctx, "SELECT "+groupColumns+" FROM groups WHERE id = ?", id)
}

// FindByInviteCode returns the group whose invite code is exactly code, or
// nil if there is none.
func (r *GroupRepository) FindByInviteCode(ctx context.Context, code string) (group *models.Group, err error) {
	defer r.observe("find_by_invite_code", time.Now(), &err)

	return r.findOne(ctx, "SELECT "+groupColumns+" FROM groups WHERE invite_code = ?", code)
}

// AddMember adds userID to groupID. A user already in the group yields
// storage.ErrDuplicate naming both IDs.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) (member *models.GroupMember, err error) {
	defer r.observe("add_member", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		member, err = r.insertMember(ctx, q, groupID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Member added", "group_id", groupID, "user_id", userID)
	return member, nil
}

// JoinByInviteCode adds userID to the group identified by code.
func (r *GroupRepository) JoinByInviteCode(ctx context.Context, code string, userID uuid.UUID) (member *models.GroupMember, err error) {
	defer r.observe("join_by_invite_code", time.Now(), &err)

	group, err := r.findOne(ctx, "SELECT "+groupColumns+" FROM groups WHERE invite_code = ?", code)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, storage.NotFound("Group")
	}

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		member, err = r.insertMember(ctx, q, group.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Member joined", "group_id", group.ID, "user_id", userID)
	return member, nil
}

// GetMembers returns the user IDs of the group's members in join order.
func (r *GroupRepository) GetMembers(ctx context.Context, groupID uuid.UUID) (userIDs []uuid.UUID, err error) {
	defer r.observe("get_members", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx,
			"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, id",
			groupID,
		)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		defer rows.Close()

		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return r.pool.Translate(err, "")
			}
			userIDs = append(userIDs, id)
		}
		return r.pool.Translate(rows.Err(), "")
	})
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// ListForUser returns the groups userID belongs to, oldest membership first.
func (r *GroupRepository) ListForUser(ctx context.Context, userID uuid.UUID) (groups []*models.Group, err error) {
	defer r.observe("list_for_user", time.Now(), &err)

	err = r.pool.Run(ctx, func(q storage.Querier) error {
		rows, err := q.QueryContext(ctx, `
			SELECT g.id, g.name, g.invite_code, g.creator_id, g.created_at
			FROM groups g
			JOIN group_members m ON m.group_id = g.id
			WHERE m.user_id = ?
			ORDER BY m.joined_at, g.id`,
			userID,
		)
		if err != nil {
			return r.pool.Translate(err, "")
		}
		defer rows.Close()

		for rows.Next() {
			group, err := scanGroup(rows)
			if err != nil {
				return r.pool.Translate(err, "")
			}
			groups = append(groups, group)
		}
		return r.pool.Translate(rows.Err(), "")
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// insertMember is the single membership write path, shared by AddMember and
// Create so both translate the unique (group_id, user_id) pair the same way.
func (r *GroupRepository) insertMember(ctx context.Context, q storage.Querier, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	member := models.NewGroupMember(groupID, userID)

	_, err := q.ExecContext(ctx,
		"INSERT INTO group_members (id, group_id, user_id, joined_at) VALUES (?, ?, ?, ?)",
		member.ID, member.GroupID, member.UserID, toMicros(member.JoinedAt),
	)
	if err != nil {
		return nil, r.pool.Translate(err, fmt.Sprintf("user %s is already a member of group %s", userID, groupID))
	}
	return member, nil
}

func (r *GroupRepository) findOne(ctx context.Context, query string, arg any) (*models.Group, error) {
	var group *models.Group
	err := r.pool.Run(ctx, func(q storage.Querier) error {
		var err error
		group, err = scanGroup(q.QueryRowContext(ctx, query, arg))
		if errors.Is(err, sql.ErrNoRows) {
			group = nil
			return nil
		}
		return r.pool.Translate(err, "")
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func scanGroup(row scanner) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	if err := row.Scan(&group.ID, &group.Name, &group.InviteCode, &group.CreatorID, &createdAt); err != nil {
		return nil, err
	}
	group.CreatedAt = fromMicros(createdAt)
	return group, nil
}
