package handlers

import (
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return writeError(c, "auth.register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return writeError(c, "auth.login", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return writeError(c, "auth.refresh", err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return writeError(c, "auth.logout", err)
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
