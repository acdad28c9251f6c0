package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devansh03/FileHaven/internal/apperr"
	"github.com/devansh03/FileHaven/internal/services"
)

// statusFor maps the service error taxonomy onto HTTP statuses. Expired
// share links land on 404 alongside missing ones so a probing caller learns
// nothing about whether a token ever existed.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrExpired):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func objectIDParam(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s", apperr.ErrValidation, name)
	}
	return id, nil
}

// streamBlob proxies the blob behind desc to the client with download
// headers set. The descriptor only locates the content; the bytes flow
// straight from the blob store through this handler.
func streamBlob(c *fiber.Ctx, desc *services.Descriptor) error {
	resp, err := http.Get(desc.URL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Download failed"})
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Download failed"})
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", desc.SuggestedFilename))
	c.Set(fiber.HeaderContentType, desc.MimeType)
	return c.SendStream(resp.Body)
}
