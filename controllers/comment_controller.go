package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type CommentController struct {
	DB *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{DB: db}
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CommentCreate)
	if checker == nil {
		return err
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	comment := models.Comment{
		CardID:   cardID,
		AuthorID: user.ID,
		Body:     req.Body,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create comment", err)
	}

	// Let everyone assigned to the card know
	var card models.Card
	cc.DB.Preload("Assignments").First(&card, cardID)
	for _, a := range card.Assignments {
		if a.UserID == user.ID {
			continue
		}
		notifyUser(cc.DB, a.UserID, models.NotificationCommentAdded,
			"New comment",
			fmt.Sprintf("New comment on %q", card.Title))
	}
	BroadcastBoard(projectID, BoardEvent{Type: EventCommentAdded, ProjectID: projectID, Payload: comment})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(comment))
}

func (cc *CommentController) GetComments(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	var comments []models.Comment
	if err := cc.DB.Where("card_id = ?", cardID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch comments", err)
	}

	return c.JSON(utils.SuccessResponse(comments))
}

// UpdateComment edits a comment. Editing your own comment needs the edit
// grant; editing someone else's needs delete-level permission. That
// ownership rule lives in the permission checker, not here.
func (cc *CommentController) UpdateComment(c *fiber.Ctx) error {
	commentID := utils.ParseUint(c.Params("commentId"))

	projectID, lookupErr := commentProjectID(cc.DB, commentID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	allowed, err := checker.CanModifyComment(c.Context(), commentID)
	if err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Permission check failed", err)
	}
	if !allowed {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can't modify this comment", nil)
	}

	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{"body": req.Body, "edited": true}
	if err := cc.DB.Model(&models.Comment{}).Where("id = ?", commentID).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update comment", err)
	}

	var comment models.Comment
	cc.DB.First(&comment, commentID)
	return c.JSON(utils.SuccessResponse(comment))
}

func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	commentID := utils.ParseUint(c.Params("commentId"))

	projectID, lookupErr := commentProjectID(cc.DB, commentID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	allowed, err := checker.CanModifyComment(c.Context(), commentID)
	if err != nil {
		if errors.Is(err, permission.ErrNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Permission check failed", err)
	}
	if !allowed {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can't delete this comment", nil)
	}

	if err := cc.DB.Delete(&models.Comment{}, commentID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Comment deleted"}))
}
