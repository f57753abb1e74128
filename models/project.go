package models

import "gorm.io/gorm"

// Project roles, highest to lowest
const (
	ProjectRoleAdmin  = "admin"
	ProjectRoleEditor = "editor"
	ProjectRoleViewer = "viewer"
)

// Project represents a kanban project. The owner is immutable once set.
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Archived    bool   `gorm:"default:false" json:"archived"`

	// Relations
	Owner      User               `gorm:"foreignKey:OwnerID" json:"-"`
	TeamGrants []ProjectTeamGrant `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"team_grants,omitempty"`
	Columns    []Column           `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
	Labels     []Label            `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"labels,omitempty"`
}

// ProjectTeamGrant marks that a team's members may access a project. The
// grant carries no role by itself; per-member roles live in
// ProjectTeamMemberRole. Unique per (project, team).
type ProjectTeamGrant struct {
	gorm.Model
	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_team" json:"project_id"`
	TeamID    uint `gorm:"not null;uniqueIndex:idx_project_team;index" json:"team_id"`
	AddedByID uint `gorm:"not null" json:"added_by_id"`

	// Relations
	Project Project `json:"-"`
	Team    Team    `json:"-"`
	AddedBy User    `gorm:"foreignKey:AddedByID" json:"-"`
}

// ProjectTeamMemberRole is the project-scoped role one team member holds on
// one project. Unique per (project, teamMembership).
type ProjectTeamMemberRole struct {
	gorm.Model
	ProjectID        uint   `gorm:"not null;uniqueIndex:idx_project_membership" json:"project_id"`
	TeamMembershipID uint   `gorm:"not null;uniqueIndex:idx_project_membership;index" json:"team_membership_id"`
	Role             string `gorm:"not null" json:"role"` // admin, editor, viewer

	// Relations
	Project        Project        `json:"-"`
	TeamMembership TeamMembership `json:"-"`
}
