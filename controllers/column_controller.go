package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type ColumnController struct {
	DB *gorm.DB
}

func NewColumnController(db *gorm.DB) *ColumnController {
	return &ColumnController{DB: db}
}

type CreateColumnRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateColumnRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ReorderColumnsRequest struct {
	ColumnIDs []uint `json:"column_ids" validate:"required,min=1"`
}

func (cc *ColumnController) CreateColumn(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ColumnCreate)
	if checker == nil {
		return err
	}

	var req CreateColumnRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// New columns go to the end of the board
	var maxPosition int
	cc.DB.Model(&models.Column{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition)

	column := models.Column{
		ProjectID: projectID,
		Name:      req.Name,
		Position:  maxPosition + 1,
	}
	if err := cc.DB.Create(&column).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create column", err)
	}

	BroadcastBoard(projectID, BoardEvent{Type: EventColumnCreated, ProjectID: projectID, Payload: column})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(column))
}

func (cc *ColumnController) UpdateColumn(c *fiber.Ctx) error {
	columnID := utils.ParseUint(c.Params("columnId"))

	projectID, lookupErr := columnProjectID(cc.DB, columnID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ColumnEdit)
	if checker == nil {
		return err
	}

	var req UpdateColumnRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := cc.DB.Model(&models.Column{}).Where("id = ?", columnID).Update("name", req.Name).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update column", err)
	}

	var column models.Column
	cc.DB.First(&column, columnID)
	BroadcastBoard(projectID, BoardEvent{Type: EventColumnUpdated, ProjectID: projectID, Payload: column})

	return c.JSON(utils.SuccessResponse(column))
}

func (cc *ColumnController) DeleteColumn(c *fiber.Ctx) error {
	columnID := utils.ParseUint(c.Params("columnId"))

	projectID, lookupErr := columnProjectID(cc.DB, columnID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Column not found", nil)
	}

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ColumnDelete)
	if checker == nil {
		return err
	}

	// Refuse to delete a column that still holds cards
	var cardCount int64
	cc.DB.Model(&models.Card{}).Where("column_id = ?", columnID).Count(&cardCount)
	if cardCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Move or delete the column's cards first", nil)
	}

	if err := cc.DB.Delete(&models.Column{}, columnID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete column", err)
	}

	BroadcastBoard(projectID, BoardEvent{Type: EventColumnDeleted, ProjectID: projectID, Payload: fiber.Map{"column_id": columnID}})

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Column deleted"}))
}

// ReorderColumns rewrites all column positions from the given ordering.
func (cc *ColumnController) ReorderColumns(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, cc.DB, projectID, permission.ColumnReorder)
	if checker == nil {
		return err
	}

	var req ReorderColumnsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// The ordering must cover exactly the project's columns
	var count int64
	cc.DB.Model(&models.Column{}).Where("project_id = ?", projectID).Count(&count)
	if int64(len(req.ColumnIDs)) != count {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Ordering must include every column exactly once", nil)
	}

	dbErr := cc.DB.Transaction(func(tx *gorm.DB) error {
		for i, columnID := range req.ColumnIDs {
			result := tx.Model(&models.Column{}).
				Where("id = ? AND project_id = ?", columnID, projectID).
				Update("position", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if dbErr == gorm.ErrRecordNotFound {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Ordering includes a column outside this project", nil)
	}
	if dbErr != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reorder columns", dbErr)
	}

	BroadcastBoard(projectID, BoardEvent{Type: EventColumnsReorder, ProjectID: projectID, Payload: fiber.Map{"column_ids": req.ColumnIDs}})

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Columns reordered"}))
}
