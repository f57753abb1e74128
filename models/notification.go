package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types
const (
	NotificationCardAssigned  = "card_assigned"
	NotificationCardMoved     = "card_moved"
	NotificationCommentAdded  = "comment_added"
	NotificationTeamInvite    = "team_invite"
	NotificationRoleChanged   = "role_changed"
	NotificationProjectShared = "project_shared"
)

// Notification is an in-app notification for one user
type Notification struct {
	gorm.Model
	UserID  uint       `gorm:"not null;index" json:"user_id"`
	Type    string     `gorm:"not null" json:"type"`
	Title   string     `gorm:"not null" json:"title"`
	Body    string     `json:"body"`
	Payload string     `gorm:"type:jsonb;default:'{}'" json:"payload"`
	ReadAt  *time.Time `json:"read_at,omitempty"`

	// Relations
	User User `json:"-"`
}
