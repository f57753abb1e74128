package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/badoux/checkmail"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"kanbanly/config"
	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type TeamController struct {
	DB *gorm.DB
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{DB: db}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Archived    *bool   `json:"archived"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner admin member viewer"`
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

// CreateTeam creates a team with the caller as creator and owner-role member.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   user.ID,
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		membership := models.TeamMembership{
			TeamID: team.ID,
			UserID: user.ID,
			Role:   models.TeamRoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetTeams lists every team the caller belongs to.
func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var teams []models.Team
	err := tc.DB.
		Joins("JOIN team_memberships ON team_memberships.team_id = teams.id AND team_memberships.deleted_at IS NULL").
		Where("team_memberships.user_id = ?", user.ID).
		Find(&teams).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}

	return c.JSON(utils.SuccessResponse(teams))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamView)
	if checker == nil {
		return err
	}

	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamEdit)
	if checker == nil {
		return err
	}

	var req UpdateTeamRequest
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
	if req.Archived != nil {
		updates["archived"] = *req.Archived
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", nil)
	}

	if err := tc.DB.Model(&models.Team{}).Where("id = ?", teamID).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	var team models.Team
	tc.DB.First(&team, teamID)
	return c.JSON(utils.SuccessResponse(team))
}

// DeleteTeam removes a team and cascades memberships. Only the creator can
// do this; no role, owner included, carries the delete grant.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamDelete)
	if checker == nil {
		return err
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", teamID).Delete(&models.ProjectTeamGrant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, teamID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Team deleted"}))
}

func (tc *TeamController) GetMembers(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamView)
	if checker == nil {
		return err
	}

	var members []models.TeamMembership
	if err := tc.DB.Preload("User").Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch members", err)
	}

	return c.JSON(utils.SuccessResponse(members))
}

func (tc *TeamController) UpdateMemberRole(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))
	memberID := utils.ParseUint(c.Params("memberId"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamManageRoles)
	if checker == nil {
		return err
	}

	var req UpdateMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var membership models.TeamMembership
	if err := tc.DB.Where("id = ? AND team_id = ?", memberID, teamID).First(&membership).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Membership not found", nil)
	}

	if err := tc.DB.Model(&membership).Update("role", req.Role).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", err)
	}

	notifyUser(tc.DB, membership.UserID, models.NotificationRoleChanged,
		"Your team role changed",
		fmt.Sprintf("Your role is now %s", req.Role))

	return c.JSON(utils.SuccessResponse(membership))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))
	memberID := utils.ParseUint(c.Params("memberId"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamRemoveMembers)
	if checker == nil {
		return err
	}

	var membership models.TeamMembership
	if err := tc.DB.Where("id = ? AND team_id = ?", memberID, teamID).First(&membership).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Membership not found", nil)
	}

	// The creator can never be removed from their own team.
	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}
	if membership.UserID == team.CreatorID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "The team creator cannot be removed", nil)
	}

	if err := tc.DB.Delete(&membership).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Member removed"}))
}

func (tc *TeamController) LeaveTeam(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamLeave)
	if checker == nil {
		return err
	}

	if checker.Context().IsTeamCreator {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "The creator cannot leave their own team", nil)
	}

	result := tc.DB.Where("team_id = ? AND user_id = ?", teamID, user.ID).Delete(&models.TeamMembership{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to leave team", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "You are not a member of this team", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Left team"}))
}

// InviteMember creates a pending invitation and emails the invitee.
func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	teamID := utils.ParseUint(c.Params("id"))

	checker, err := requireTeamPermission(c, tc.DB, teamID, permission.TeamInviteMembers)
	if checker == nil {
		return err
	}

	var req InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	// Reject if the invitee is already a member
	var existing int64
	tc.DB.Model(&models.TeamMembership{}).
		Joins("JOIN users ON users.id = team_memberships.user_id").
		Where("team_memberships.team_id = ? AND users.email = ?", teamID, req.Email).
		Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already a team member", nil)
	}

	token, err := utils.GenerateToken(32)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create invitation", err)
	}

	invitation := models.TeamInvitation{
		TeamID:      teamID,
		Email:       req.Email,
		Role:        req.Role,
		Token:       token,
		InvitedByID: user.ID,
		ExpiresAt:   time.Now().Add(time.Duration(config.AppConfig.InviteTTLHours) * time.Hour),
	}
	if err := tc.DB.Create(&invitation).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create invitation", err)
	}

	// Notify a registered invitee in-app as well
	var invitee models.User
	if err := tc.DB.Where("email = ?", req.Email).First(&invitee).Error; err == nil {
		notifyUser(tc.DB, invitee.ID, models.NotificationTeamInvite,
			"Team invitation",
			fmt.Sprintf("You've been invited to join %s", team.Name))
	}

	// Email delivery must not block or fail the request
	go tc.sendInviteEmail(&invitation, &team, user)

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(invitation))
}

func (tc *TeamController) sendInviteEmail(invitation *models.TeamInvitation, team *models.Team, inviter *models.User) {
	log := logrus.WithFields(logrus.Fields{
		"team_id": team.ID,
		"email":   invitation.Email,
	})

	inviterName := inviter.Email
	if inviter.Name != nil {
		inviterName = *inviter.Name
	}

	err := utils.SendEmail(utils.EmailData{
		Subject:  fmt.Sprintf("Invitation to join %s on Kanbanly", team.Name),
		To:       []string{invitation.Email},
		Template: "team_invite",
		Data: fiber.Map{
			"TeamName":    team.Name,
			"InviterName": inviterName,
			"Role":        invitation.Role,
			"AcceptURL":   fmt.Sprintf("%s/invitations/%s", config.AppConfig.AppBaseURL, invitation.Token),
			"ExpiresAt":   invitation.ExpiresAt.Format("Jan 2, 2006"),
		},
	})
	if err != nil {
		log.WithError(err).Error("failed to send invitation email")
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", "team_invite")
			scope.SetExtra("team_id", team.ID)
			sentry.CaptureException(err)
		})
		return
	}
	log.Info("invitation email sent")
}

// AcceptInvitation turns a pending invitation into a membership.
func (tc *TeamController) AcceptInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	token := c.Params("token")

	var invitation models.TeamInvitation
	if err := tc.DB.Where("token = ?", token).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Invitation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up invitation", err)
	}

	if invitation.AcceptedAt != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Invitation already accepted", nil)
	}
	if time.Now().After(invitation.ExpiresAt) {
		return utils.ErrorResponse(c, fiber.StatusGone, "Invitation has expired", nil)
	}
	if invitation.Email != user.Email {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "This invitation was issued to a different email", nil)
	}

	membership := models.TeamMembership{
		TeamID: invitation.TeamID,
		UserID: user.ID,
		Role:   invitation.Role,
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Update("accepted_at", time.Now()).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to accept invitation", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(membership))
}

// notifyUser records an in-app notification. Failures are logged, never
// surfaced to the triggering request.
func notifyUser(db *gorm.DB, userID uint, notifType, title, body string) {
	notification := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	if err := db.Create(&notification).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to record notification")
		return
	}
	BroadcastToUser(userID, NotificationEvent{
		Type:  notifType,
		Title: title,
		Body:  body,
	})
}
