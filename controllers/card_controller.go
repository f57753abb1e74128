package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type CardController struct {
	DB *gorm.DB
}

func NewCardController(db *gorm.DB) *CardController {
	return &CardController{DB: db}
}

type CreateCardRequest struct {
	ColumnID    uint       `json:"column_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateCardRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
}

type MoveCardRequest struct {
	ColumnID uint `json:"column_id" validate:"required"`
	Position int  `json:"position" validate:"min=0"`
}

type AssignCardRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

func (cc *CardController) CreateCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	projectID, lookupErr := columnProjectID(cc.DB, req.ColumnID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardCreate)
	if checker == nil {
		return err
	}

	var maxPosition int
	cc.DB.Model(&models.Card{}).
		Where("column_id = ?", req.ColumnID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition)

	card := models.Card{
		ColumnID:    req.ColumnID,
		CreatedByID: user.ID,
		Title:       req.Title,
		Description: req.Description,
		Position:    maxPosition + 1,
		DueDate:     req.DueDate,
	}
	if err := cc.DB.Create(&card).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create card", err)
	}

	BroadcastBoard(projectID, BoardEvent{Type: EventCardCreated, ProjectID: projectID, Payload: card})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(card))
}

func (cc *CardController) GetCard(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	var card models.Card
	if err := cc.DB.
		Preload("Assignments").
		Preload("Comments").
		Preload("Labels").
		Preload("Attachments").
		First(&card, cardID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	return c.JSON(utils.SuccessResponse(card))
}

func (cc *CardController) UpdateCard(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardEdit)
	if checker == nil {
		return err
	}

	var req UpdateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", nil)
	}

	if err := cc.DB.Model(&models.Card{}).Where("id = ?", cardID).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update card", err)
	}

	var card models.Card
	cc.DB.First(&card, cardID)
	BroadcastBoard(projectID, BoardEvent{Type: EventCardUpdated, ProjectID: projectID, Payload: card})

	return c.JSON(utils.SuccessResponse(card))
}

func (cc *CardController) DeleteCard(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardDelete)
	if checker == nil {
		return err
	}

	if err := cc.DB.Delete(&models.Card{}, cardID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete card", err)
	}

	BroadcastBoard(projectID, BoardEvent{Type: EventCardDeleted, ProjectID: projectID, Payload: fiber.Map{"card_id": cardID}})

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Card deleted"}))
}

// MoveCard moves a card to a column/position within the same project.
func (cc *CardController) MoveCard(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardMove)
	if checker == nil {
		return err
	}

	var req MoveCardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Cross-project moves are not a thing
	targetProjectID, lookupErr := columnProjectID(cc.DB, req.ColumnID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Target column not found", nil)
	}
	if targetProjectID != projectID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot move a card to another project", nil)
	}

	dbErr := cc.DB.Transaction(func(tx *gorm.DB) error {
		// Shift trailing cards in the target column, then slot the card in
		if err := tx.Model(&models.Card{}).
			Where("column_id = ? AND position >= ? AND id != ?", req.ColumnID, req.Position, cardID).
			Update("position", gorm.Expr("position + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Card{}).Where("id = ?", cardID).
			Updates(map[string]interface{}{
				"column_id": req.ColumnID,
				"position":  req.Position,
			}).Error
	})
	if dbErr != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to move card", dbErr)
	}

	var card models.Card
	cc.DB.Preload("Assignments").First(&card, cardID)
	for _, a := range card.Assignments {
		if a.UserID == checker.Context().UserID {
			continue
		}
		notifyUser(cc.DB, a.UserID, models.NotificationCardMoved,
			"Card moved",
			fmt.Sprintf("%q was moved to another column", card.Title))
	}
	BroadcastBoard(projectID, BoardEvent{Type: EventCardMoved, ProjectID: projectID, Payload: card})

	return c.JSON(utils.SuccessResponse(card))
}

// AssignCard assigns a user who can view the project to a card.
func (cc *CardController) AssignCard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardAssign)
	if checker == nil {
		return err
	}

	var req AssignCardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// The assignee needs their own view access to the project
	assigneeChecker := permission.NewProjectChecker(permission.NewGormStore(cc.DB), req.UserID, projectID)
	if err := assigneeChecker.Load(c.Context()); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check assignee access", err)
	}
	if ok, _ := assigneeChecker.CanViewProject(); !ok {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Assignee has no access to this project", nil)
	}

	var existing int64
	cc.DB.Model(&models.CardAssignment{}).
		Where("card_id = ? AND user_id = ?", cardID, req.UserID).
		Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already assigned to this card", nil)
	}

	assignment := models.CardAssignment{
		CardID:       cardID,
		UserID:       req.UserID,
		AssignedByID: user.ID,
	}
	if err := cc.DB.Create(&assignment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign card", err)
	}

	var card models.Card
	cc.DB.First(&card, cardID)
	notifyUser(cc.DB, req.UserID, models.NotificationCardAssigned,
		"Card assigned to you",
		fmt.Sprintf("You were assigned to %q", card.Title))
	BroadcastBoard(projectID, BoardEvent{Type: EventCardAssigned, ProjectID: projectID, Payload: assignment})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(assignment))
}

func (cc *CardController) UnassignCard(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))
	userID := utils.ParseUint(c.Params("userId"))

	projectID, lookupErr := cardProjectID(cc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.CardAssign)
	if checker == nil {
		return err
	}

	result := cc.DB.Where("card_id = ? AND user_id = ?", cardID, userID).Delete(&models.CardAssignment{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unassign card", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Assignment removed"}))
}
