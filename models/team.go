package models

import (
	"time"

	"gorm.io/gorm"
)

// Team roles, highest to lowest
const (
	TeamRoleOwner  = "owner"
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"
	TeamRoleViewer = "viewer"
)

// Team represents a collaboration group. The creator is immutable and always
// has full permission on the team regardless of any recorded role.
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`
	Archived    bool   `gorm:"default:false" json:"archived"`

	// Relations
	Creator     User             `gorm:"foreignKey:CreatorID" json:"-"`
	Members     []TeamMembership `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Invitations []TeamInvitation `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"invitations,omitempty"`
}

// TeamMembership ties a user to a team with a role. Unique per (team, user).
type TeamMembership struct {
	gorm.Model
	TeamID uint   `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_team_user;index" json:"user_id"`
	Role   string `gorm:"default:'member'" json:"role"` // owner, admin, member, viewer

	// Relations
	Team Team `json:"-"`
	User User `json:"-"`
}

// TeamInvitation is a pending invite to join a team
type TeamInvitation struct {
	gorm.Model
	TeamID      uint       `gorm:"not null;index" json:"team_id"`
	Email       string     `gorm:"not null;index" json:"email"`
	Role        string     `gorm:"default:'member'" json:"role"`
	Token       string     `gorm:"not null;uniqueIndex" json:"-"`
	InvitedByID uint       `gorm:"not null" json:"invited_by_id"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`

	// Relations
	Team      Team `json:"-"`
	InvitedBy User `gorm:"foreignKey:InvitedByID" json:"-"`
}
