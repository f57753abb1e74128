package controller

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
	"kanbanly/utils"
)

type AttachmentController struct {
	DB *gorm.DB
}

func NewAttachmentController(db *gorm.DB) *AttachmentController {
	return &AttachmentController{DB: db}
}

// 25 MB upload ceiling
const maxAttachmentSize = 25 << 20

// UploadAttachment records attachment metadata from a multipart upload. The
// blob lands in external storage keyed by StorageKey; only the descriptor
// lives in the database.
func (ac *AttachmentController) UploadAttachment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(ac.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, ac.DB, projectID, permission.AttachmentUpload)
	if checker == nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A file is required", err)
	}
	if file.Size > maxAttachmentSize {
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 25 MB limit", nil)
	}

	key, err := utils.GenerateToken(16)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
	}
	storageKey := fmt.Sprintf("cards/%d/%s%s", cardID, key, filepath.Ext(file.Filename))

	if err := c.SaveFile(file, fmt.Sprintf("./uploads/%s", storageKey)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
	}

	attachment := models.Attachment{
		CardID:       cardID,
		UploadedByID: user.ID,
		FileName:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		SizeBytes:    file.Size,
		StorageKey:   storageKey,
	}
	if err := ac.DB.Create(&attachment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record attachment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(attachment))
}

func (ac *AttachmentController) GetAttachments(c *fiber.Ctx) error {
	cardID := utils.ParseUint(c.Params("cardId"))

	projectID, lookupErr := cardProjectID(ac.DB, cardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, ac.DB, projectID, permission.ProjectView)
	if checker == nil {
		return err
	}

	var attachments []models.Attachment
	if err := ac.DB.Where("card_id = ?", cardID).Find(&attachments).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch attachments", err)
	}

	return c.JSON(utils.SuccessResponse(attachments))
}

func (ac *AttachmentController) DeleteAttachment(c *fiber.Ctx) error {
	attachmentID := utils.ParseUint(c.Params("attachmentId"))

	var attachment models.Attachment
	if err := ac.DB.First(&attachment, attachmentID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Attachment not found", nil)
	}

	projectID, lookupErr := cardProjectID(ac.DB, attachment.CardID)
	if lookupErr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Card not found", nil)
	}

	checker, err := requireProjectPermission(c, ac.DB, projectID, permission.AttachmentDelete)
	if checker == nil {
		return err
	}

	if err := ac.DB.Delete(&attachment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete attachment", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Attachment deleted"}))
}
