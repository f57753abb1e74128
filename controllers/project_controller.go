package controller

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type ProjectController struct {
	DB *gorm.DB
}

func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{DB: db}
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type GrantTeamRequest struct {
	TeamID uint `json:"team_id" validate:"required"`
}

type SetMemberRoleRequest struct {
	TeamMembershipID uint   `json:"team_membership_id" validate:"required"`
	Role             string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// CreateProject creates a project owned by the caller.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     user.ID,
	}

	// A new project starts with the three default columns.
	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for i, name := range []string{"To Do", "In Progress", "Done"} {
			column := models.Column{ProjectID: project.ID, Name: name, Position: i}
			if err := tx.Create(&column).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create project", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

// GetProjects lists projects the caller owns or can reach through a team
// grant.
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var projects []models.Project
	err := pc.DB.
		Distinct("projects.*").
		Joins("LEFT JOIN project_team_grants ON project_team_grants.project_id = projects.id AND project_team_grants.deleted_at IS NULL").
		Joins("LEFT JOIN team_memberships ON team_memberships.team_id = project_team_grants.team_id AND team_memberships.deleted_at IS NULL").
		Where("projects.owner_id = ? OR team_memberships.user_id = ?", user.ID, user.ID).
		Find(&projects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch projects", err)
	}

	return c.JSON(utils.SuccessResponse(projects))
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	var project models.Project
	if err := pc.DB.Preload("Columns", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Columns.Cards", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Labels").First(&project, projectID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	return c.JSON(utils.SuccessResponse(project))
}

// GetProjectPermissions returns the caller's effective permissions so the
// frontend can hide affordances without a second round trip per action.
func (pc *ProjectController) GetProjectPermissions(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	granted := []string{}
	for _, p := range permission.Catalog() {
		if p.Resource == permission.ResourceTeam {
			continue
		}
		ok, permErr := checker.HasPermission(p)
		if permErr != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Permission check failed", permErr)
		}
		if ok {
			granted = append(granted, p.String())
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"project_id":  projectID,
		"is_owner":    checker.Context().IsProjectOwner,
		"permissions": granted,
	}))
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectEdit)
	if checker == nil {
		return err
	}

	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", nil)
	}

	if err := pc.DB.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update project", err)
	}

	var project models.Project
	pc.DB.First(&project, projectID)
	return c.JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) ArchiveProject(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectArchive)
	if checker == nil {
		return err
	}

	if err := pc.DB.Model(&models.Project{}).Where("id = ?", projectID).Update("archived", true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to archive project", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Project archived"}))
}

// DeleteProject is owner-only: no project role carries the delete grant.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectDelete)
	if checker == nil {
		return err
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTeamMemberRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTeamGrant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete project", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Project deleted"}))
}

// GrantTeam gives a team's members access to the project. The grant carries
// no role; per-member roles are assigned separately.
func (pc *ProjectController) GrantTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectManageTeams)
	if checker == nil {
		return err
	}

	var req GrantTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	if err := pc.DB.First(&team, req.TeamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var existing int64
	pc.DB.Model(&models.ProjectTeamGrant{}).
		Where("project_id = ? AND team_id = ?", projectID, req.TeamID).
		Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team already has access to this project", nil)
	}

	grant := models.ProjectTeamGrant{
		ProjectID: projectID,
		TeamID:    req.TeamID,
		AddedByID: user.ID,
	}
	if err := pc.DB.Create(&grant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to grant team access", err)
	}

	// Tell team members about their new project
	var project models.Project
	pc.DB.First(&project, projectID)
	var members []models.TeamMembership
	pc.DB.Where("team_id = ?", req.TeamID).Find(&members)
	for _, m := range members {
		notifyUser(pc.DB, m.UserID, models.NotificationProjectShared,
			"New project shared",
			fmt.Sprintf("Your team %s now has access to %s", team.Name, project.Name))
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(grant))
}

// RevokeTeam removes a team's grant and every project role its memberships
// held.
func (pc *ProjectController) RevokeTeam(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))
	teamID := utils.ParseUint(c.Params("teamId"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectManageTeams)
	if checker == nil {
		return err
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"project_id = ? AND team_membership_id IN (?)",
			projectID,
			tx.Model(&models.TeamMembership{}).Select("id").Where("team_id = ?", teamID),
		).Delete(&models.ProjectTeamMemberRole{}).Error; err != nil {
			return err
		}
		result := tx.Where("project_id = ? AND team_id = ?", projectID, teamID).
			Delete(&models.ProjectTeamGrant{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team grant not found", nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke team access", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Team access revoked"}))
}

// SetMemberRole assigns or updates the project-scoped role of a team member.
func (pc *ProjectController) SetMemberRole(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectManageTeams)
	if checker == nil {
		return err
	}

	var req SetMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// The membership's team must have a grant on this project
	var membership models.TeamMembership
	if err := pc.DB.First(&membership, req.TeamMembershipID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team membership not found", nil)
	}
	var grantCount int64
	pc.DB.Model(&models.ProjectTeamGrant{}).
		Where("project_id = ? AND team_id = ?", projectID, membership.TeamID).
		Count(&grantCount)
	if grantCount == 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "That member's team has no access to this project", nil)
	}

	var role models.ProjectTeamMemberRole
	err = pc.DB.Where("project_id = ? AND team_membership_id = ?", projectID, req.TeamMembershipID).
		First(&role).Error
	if err == nil {
		if err := pc.DB.Model(&role).Update("role", req.Role).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", err)
		}
	} else {
		role = models.ProjectTeamMemberRole{
			ProjectID:        projectID,
			TeamMembershipID: req.TeamMembershipID,
			Role:             req.Role,
		}
		if err := pc.DB.Create(&role).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign role", err)
		}
	}

	notifyUser(pc.DB, membership.UserID, models.NotificationRoleChanged,
		"Your project role changed",
		fmt.Sprintf("Your project role is now %s", req.Role))

	return c.JSON(utils.SuccessResponse(role))
}

// ClearMemberRole removes a project-scoped role. The member keeps team-grant
// access at the default level.
func (pc *ProjectController) ClearMemberRole(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))
	membershipID := utils.ParseUint(c.Params("membershipId"))

	checker, err := requireProjectPermission(c, pc.DB, projectID, permission.ProjectManageTeams)
	if checker == nil {
		return err
	}

	result := pc.DB.Where("project_id = ? AND team_membership_id = ?", projectID, membershipID).
		Delete(&models.ProjectTeamMemberRole{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear role", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project role not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Project role cleared"}))
}
