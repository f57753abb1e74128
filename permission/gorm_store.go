package permission

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kanbanly/models"
)

// GormStore is the production Store backed by the application database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetProjectOwner(ctx context.Context, projectID uint) (uint, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Select("id", "owner_id").First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("fetching project owner: %w", err)
	}
	return project.OwnerID, nil
}

func (s *GormStore) GetTeamCreator(ctx context.Context, teamID uint) (uint, error) {
	var team models.Team
	err := s.db.WithContext(ctx).Select("id", "creator_id").First(&team, teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("fetching team creator: %w", err)
	}
	return team.CreatorID, nil
}

func (s *GormStore) GetUserTeamMembershipsWithProjectAccess(ctx context.Context, userID, projectID uint) ([]MembershipGrant, error) {
	var rows []struct {
		TeamID      uint
		TeamRole    string
		ProjectRole *string
	}

	err := s.db.WithContext(ctx).
		Table("team_memberships").
		Select("team_memberships.team_id AS team_id, team_memberships.role AS team_role, project_team_member_roles.role AS project_role").
		Joins("JOIN project_team_grants ON project_team_grants.team_id = team_memberships.team_id AND project_team_grants.project_id = ? AND project_team_grants.deleted_at IS NULL", projectID).
		Joins("LEFT JOIN project_team_member_roles ON project_team_member_roles.team_membership_id = team_memberships.id AND project_team_member_roles.project_id = ? AND project_team_member_roles.deleted_at IS NULL", projectID).
		Where("team_memberships.user_id = ? AND team_memberships.deleted_at IS NULL", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetching project memberships: %w", err)
	}

	grants := make([]MembershipGrant, 0, len(rows))
	for _, row := range rows {
		teamRole, ok := ParseTeamRole(row.TeamRole)
		if !ok {
			// Unknown stored role maps to least privilege.
			teamRole = TeamRoleViewer
		}
		grant := MembershipGrant{TeamID: row.TeamID, TeamRole: teamRole}
		if row.ProjectRole != nil {
			if projectRole, ok := ParseProjectRole(*row.ProjectRole); ok {
				grant.ProjectRole = &projectRole
			}
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

func (s *GormStore) GetUserTeamMembership(ctx context.Context, userID, teamID uint) (*TeamRole, error) {
	var membership models.TeamMembership
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching team membership: %w", err)
	}

	role, ok := ParseTeamRole(membership.Role)
	if !ok {
		role = TeamRoleViewer
	}
	return &role, nil
}

func (s *GormStore) GetCommentAuthor(ctx context.Context, commentID uint) (uint, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Select("id", "author_id").First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("fetching comment author: %w", err)
	}
	return comment.AuthorID, nil
}
