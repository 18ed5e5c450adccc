package handlers

import (
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me works for unapproved profiles too, so the app can show a waiting screen.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}

	profile, err := h.profiles.Me(c.UserContext(), profileID)
	if err != nil {
		return writeError(c, "profile.me", err)
	}
	return c.JSON(services.ToProfileResponse(profile))
}

func (h *ProfileHandler) List(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}

	profiles, err := h.profiles.List(c.UserContext(), profileID)
	if err != nil {
		return writeError(c, "profile.list", err)
	}
	out := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, services.ToProfileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"profiles": out, "count": len(out)})
}

func (h *ProfileHandler) SetRole(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid profile ID")
	}
	var req dto.SetRoleRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	profile, err := h.profiles.SetRole(c.UserContext(), profileID, targetID, req.Role)
	if err != nil {
		return writeError(c, "profile.set_role", err)
	}
	return c.JSON(services.ToProfileResponse(profile))
}

func (h *ProfileHandler) SetApproved(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid profile ID")
	}
	var req dto.SetApprovedRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	profile, err := h.profiles.SetApproved(c.UserContext(), profileID, targetID, req.Approved)
	if err != nil {
		return writeError(c, "profile.set_approved", err)
	}
	return c.JSON(services.ToProfileResponse(profile))
}

func (h *ProfileHandler) History(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid profile ID")
	}

	entries, err := h.profiles.History(c.UserContext(), profileID, targetID)
	if err != nil {
		return writeError(c, "profile.history", err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}
