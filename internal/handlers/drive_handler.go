package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/services"
)

var folderService *services.FolderService

// InitDriveHandler wires the folder tree service into the drive routes.
func InitDriveHandler(folders *services.FolderService) {
	folderService = folders
}

// GetDrive lists the caller's drive root, or a folder inside it when the
// route carries a folder id, with breadcrumbs for the open folder.
func GetDrive(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var parentID *primitive.ObjectID
	breadcrumbs := []services.Breadcrumb{{Name: "My Drive"}}

	if c.Params("id") != "" {
		id, err := objectIDParam(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if _, err := folderService.ResolveOwned(c.Context(), id, userID); err != nil {
			return fail(c, err)
		}
		breadcrumbs, err = folderService.Breadcrumbs(c.Context(), id)
		if err != nil {
			return fail(c, err)
		}
		parentID = &id
	}

	folders, files, err := folderService.ListChildren(c.Context(), userID, parentID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"breadcrumbs": breadcrumbs,
		"folders":     folders,
		"files":       files,
	})
}

func CreateFolderHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var request struct {
		Name     string `json:"name"`
		ParentID string `json:"parent_id"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var parentID *primitive.ObjectID
	if request.ParentID != "" {
		id, err := primitive.ObjectIDFromHex(request.ParentID)
		if err != nil {
			return fail(c, fmt.Errorf("%w: invalid parent_id", apperr.ErrValidation))
		}
		parentID = &id
	}

	folder, err := folderService.Create(c.Context(), userID, request.Name, parentID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Folder created", "folder": folder})
}

// DeleteFolderHandler removes a folder and its whole subtree, answering
// with the former parent id so the client can navigate back.
func DeleteFolderHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	id, err := objectIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	parentID, err := folderService.Delete(c.Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Folder deleted", "parent_id": parentID})
}
