package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

// newAuthzStore builds the Store the permission helpers query. A variable so
// tests can substitute a fake.
var newAuthzStore = func(db *gorm.DB) permission.Store {
	return permission.NewGormStore(db)
}

// requireProjectPermission loads a permission checker for the current user
// and enforces one catalog permission. A nil checker means the response has
// already been written (404 for a missing project, 403 for a denial) and the
// handler should return the accompanying error value.
func requireProjectPermission(c *fiber.Ctx, db *gorm.DB, projectID uint, perm permission.Permission) (*permission.ProjectChecker, error) {
	user := c.Locals("user").(*models.User)

	checker := permission.NewProjectChecker(newAuthzStore(db), user.ID, projectID)
	if err := checker.Load(c.Context()); err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve permissions", err)
	}

	allowed, err := checker.HasPermission(perm)
	if err != nil {
		// ErrContextNotLoaded / unknown permission are programming errors,
		// not denials; surface them as 500s.
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Permission check failed", err)
	}
	if !allowed {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You don't have permission to do that", nil)
	}
	return checker, nil
}

// requireTeamPermission is the team-scoped counterpart of
// requireProjectPermission.
func requireTeamPermission(c *fiber.Ctx, db *gorm.DB, teamID uint, perm permission.Permission) (*permission.TeamChecker, error) {
	user := c.Locals("user").(*models.User)

	checker := permission.NewTeamChecker(newAuthzStore(db), user.ID, teamID)
	if err := checker.Load(c.Context()); err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve permissions", err)
	}

	allowed, err := checker.HasPermission(perm)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Permission check failed", err)
	}
	if !allowed {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "You don't have permission to do that", nil)
	}
	return checker, nil
}

// columnProjectID resolves the owning project of a column.
func columnProjectID(db *gorm.DB, columnID uint) (uint, error) {
	var column models.Column
	if err := db.Select("id", "project_id").First(&column, columnID).Error; err != nil {
		return 0, err
	}
	return column.ProjectID, nil
}

// cardProjectID resolves the owning project of a card through its column.
func cardProjectID(db *gorm.DB, cardID uint) (uint, error) {
	var card models.Card
	if err := db.Select("id", "column_id").First(&card, cardID).Error; err != nil {
		return 0, err
	}
	return columnProjectID(db, card.ColumnID)
}

// commentProjectID resolves the owning project of a comment through its card.
func commentProjectID(db *gorm.DB, commentID uint) (uint, error) {
	var comment models.Comment
	if err := db.Select("id", "card_id").First(&comment, commentID).Error; err != nil {
		return 0, err
	}
	return cardProjectID(db, comment.CardID)
}
