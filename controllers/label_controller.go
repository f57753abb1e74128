package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type LabelController struct {
	DB *gorm.DB
}

func NewLabelController(db *gorm.DB) *LabelController {
	return &LabelController{DB: db}
}

type CreateLabelRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateLabelRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

func (lc *LabelController) CreateLabel(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, lc.DB, projectID, permission.LabelCreate)
	if checker == nil {
		return err
	}

	var req CreateLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	label := models.Label{
		ProjectID: projectID,
		Name:      req.Name,
	}
	if req.Color != "" {
		label.Color = req.Color
	}
	if err := lc.DB.Create(&label).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create label", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(label))
}

func (lc *LabelController) GetLabels(c *fiber.Ctx) error {
	projectID := utils.ParseUint(c.Params("id"))

	checker, err := requireProjectPermission(c, lc.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	var labels []models.Label
	if err := lc.DB.Where("project_id = ?", projectID).Find(&labels).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch labels", err)
	}

	return c.JSON(utils.SuccessResponse(labels))
}

func (lc *LabelController) UpdateLabel(c *fiber.Ctx) error {
	labelID := utils.ParseUint(c.Params("labelId"))

	var label models.Label
	if err := lc.DB.First(&label, labelID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Label not found", nil)
	}

	checker, err := requireProjectPermission(c, lc.DB, label.ProjectID, permission.LabelEdit)
	if checker == nil {
		return err
	}

	var req UpdateLabelRequest
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
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No fields to update", nil)
	}

	if err := lc.DB.Model(&label).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update label", err)
	}

	return c.JSON(utils.SuccessResponse(label))
}

func (lc *LabelController) DeleteLabel(c *fiber.Ctx) error {
	labelID := utils.ParseUint(c.Params("labelId"))

	var label models.Label
	if err := lc.DB.First(&label, labelID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Label not found", nil)
	}

	checker, err := requireProjectPermission(c, lc.DB, label.ProjectID, permission.LabelDelete)
	if checker == nil {
		return err
	}

	dbErr := lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", labelID).Delete(&models.CardLabel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&label).Error
	})
	if dbErr != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete label", dbErr)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Label deleted"}))
}

// AttachLabel tags a card with a project label.
func (lc *LabelController) AttachLabel(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))
	labelID := utils.ParseUint(c.Params("labelId"))

	projectID, lookupErr := cardProjectID(lc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, lc.DB, projectID, permission.CardEdit)
	if checker == nil {
		return err
	}

	var label models.Label
	if err := lc.DB.First(&label, labelID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Label not found", nil)
	}
	if label.ProjectID != projectID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Label belongs to another project", nil)
	}

	var existing int64
	lc.DB.Model(&models.CardLabel{}).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Count(&existing)
	if existing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Card already has this label", nil)
	}

	cardLabel := models.CardLabel{CardID: cardID, LabelID: labelID}
	if err := lc.DB.Create(&cardLabel).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to attach label", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(cardLabel))
}

func (lc *LabelController) DetachLabel(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))
	labelID := utils.ParseUint(c.Params("labelId"))

	projectID, lookupErr := cardProjectID(lc.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, lc.DB, projectID, permission.CardEdit)
	if checker == nil {
		return err
	}

	result := lc.DB.Where("card_id = ? AND label_id = ?", cardID, labelID).Delete(&models.CardLabel{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to detach label", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Label is not attached to this card", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Label detached"}))
}
