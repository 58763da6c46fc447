package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeUserDeleted = "user.deleted"

// UserDeletedEvent signals that a user account was removed upstream.
// RemovedAt marks the end of the removal period the active payment option
// must stay usable through.
type UserDeletedEvent struct {
	BaseEvent
	UserID    int64     `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
	RemovedAt time.Time `json:"removed_at"`
}

func NewUserDeletedEvent(userID int64, deletedAt, removedAt time.Time) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"deleted_at": deletedAt,
				"removed_at": removedAt,
			},
		},
		UserID:    userID,
		DeletedAt: deletedAt,
		RemovedAt: removedAt,
	}
}
