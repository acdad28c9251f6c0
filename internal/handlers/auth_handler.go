package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/devansh03/FileHaven/internal/services"
)

var authService *services.AuthService

// InitAuthHandler wires the auth service into the auth routes.
func InitAuthHandler(auth *services.AuthService) {
	authService = auth
}

func RegisterHandler(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := authService.Register(c.Context(), request.Email, request.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully", "user": user})
}

func LoginHandler(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	token, err := authService.Login(c.Context(), request.Email, request.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"token": token})
}
