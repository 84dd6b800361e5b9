package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupMember records that a user belongs to a group.
// A user joins a given group at most once.
type GroupMember struct {
	ID       uuid.UUID
	GroupID  uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

func NewGroupMember(groupID, userID uuid.UUID) *GroupMember {
	return &GroupMember{
		ID:       uuid.New(),
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: Now(),
	}
}
