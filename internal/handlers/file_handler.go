package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/services"
)

var fileService *services.FileService

// InitFileHandler wires the file lifecycle service into the file routes.
func InitFileHandler(files *services.FileService) {
	fileService = files
}

// UploadFileHandler accepts a multipart upload into the caller's drive,
// optionally targeting a folder via the folder_id form field.
func UploadFileHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please select a file to upload"})
	}

	var folderID *primitive.ObjectID
	if raw := c.FormValue("folder_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return fail(c, fmt.Errorf("%w: invalid folder_id", apperr.ErrValidation))
		}
		folderID = &id
	}

	content, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to open uploaded file"})
	}
	// The multipart temp file is released on every exit path.
	defer content.Close()

	fileData, err := fileService.Upload(c.Context(), userID, folderID, content, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "File uploaded successfully",
		"file":    fileData,
	})
}

// DownloadFileHandler streams a file's content back to its owner.
func DownloadFileHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	id, err := objectIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	desc, err := fileService.Download(c.Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}

	return streamBlob(c, desc)
}

func DeleteFileHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	id, err := objectIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	folderID, err := fileService.Delete(c.Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "File deleted", "folder_id": folderID})
}
