package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/devansh03/FileHaven/internal/services"
)

var shareService *services.ShareService

// InitShareHandler wires the share resolver into the share routes.
func InitShareHandler(shares *services.ShareService) {
	shareService = shares
}

// CreateShareHandler publishes a public read-only link for one of the
// caller's folders. An absent or zero expires_in_hours makes a link that
// never expires.
func CreateShareHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	folderID, err := objectIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var request struct {
		ExpiresInHours int `json:"expires_in_hours"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	share, err := shareService.Create(c.Context(), userID, folderID, time.Duration(request.ExpiresInHours)*time.Hour)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Share link created", "share": share})
}

func RevokeShareHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := shareService.Revoke(c.Context(), c.Params("token"), userID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Share link revoked"})
}

// GetSharedFolder serves the public view of a shared subtree. The top level
// and nested navigation share one handler; nested requests carry a folder
// id and must prove descent from the shared root.
func GetSharedFolder(c *fiber.Ctx) error {
	root, err := shareService.Resolve(c.Context(), c.Params("token"))
	if err != nil {
		return fail(c, err)
	}

	folderID := root.ID
	if c.Params("id") != "" {
		folderID, err = objectIDParam(c, "id")
		if err != nil {
			return fail(c, err)
		}
	}

	folders, files, err := shareService.ListSubfolder(c.Context(), root, folderID)
	if err != nil {
		return fail(c, err)
	}

	breadcrumbs, err := shareService.SharedBreadcrumbs(c.Context(), root, folderID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"breadcrumbs": breadcrumbs,
		"folders":     folders,
		"files":       files,
	})
}

// DownloadSharedFileHandler streams a file to an unauthenticated caller if
// the file sits inside the shared subtree.
func DownloadSharedFileHandler(c *fiber.Ctx) error {
	root, err := shareService.Resolve(c.Context(), c.Params("token"))
	if err != nil {
		return fail(c, err)
	}

	fileID, err := objectIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	file, err := shareService.SharedFile(c.Context(), root, fileID)
	if err != nil {
		return fail(c, err)
	}

	return streamBlob(c, services.DescriptorFor(file))
}
