package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`
	TokenVersion  int    `gorm:"default:0" json:"-"`

	// Profile information
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Timezone  string  `gorm:"default:'UTC'" json:"timezone"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Relations
	TeamMemberships []TeamMembership `gorm:"foreignKey:UserID" json:"team_memberships,omitempty"`
	OwnedProjects   []Project        `gorm:"foreignKey:OwnerID" json:"owned_projects,omitempty"`
	Notifications   []Notification   `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// RefreshToken stores issued refresh tokens so they can be revoked
type RefreshToken struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	TokenHash string `gorm:"not null;uniqueIndex" json:"-"`
	Revoked   bool   `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
