package handlers

import (
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List returns the shared client list. ?include_deleted=true adds
// soft-deleted clients for the restore view.
func (h *ClientHandler) List(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}

	clients, err := h.clients.ListVisible(c.UserContext(), profileID, c.QueryBool("include_deleted"))
	if err != nil {
		return writeError(c, "client.list", err)
	}
	return c.JSON(fiber.Map{"clients": clients, "count": len(clients)})
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid client ID")
	}

	client, err := h.clients.Get(c.UserContext(), profileID, clientID)
	if err != nil {
		return writeError(c, "client.get", err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateClientRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	client, err := h.clients.Create(c.UserContext(), profileID, &req)
	if err != nil {
		return writeError(c, "client.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid client ID")
	}
	var req dto.UpdateClientRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	client, err := h.clients.Update(c.UserContext(), profileID, clientID, &req)
	if err != nil {
		return writeError(c, "client.update", err)
	}
	return c.JSON(client)
}

// SoftDelete hides the client from the default list. Repeating it is a no-op
// that returns the client unchanged.
func (h *ClientHandler) SoftDelete(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid client ID")
	}

	client, err := h.clients.SoftDelete(c.UserContext(), profileID, clientID)
	if err != nil {
		return writeError(c, "client.soft_delete", err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) Restore(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid client ID")
	}

	client, err := h.clients.Restore(c.UserContext(), profileID, clientID)
	if err != nil {
		return writeError(c, "client.restore", err)
	}
	return c.JSON(client)
}

// HardDelete permanently removes a client with no orders. Admin only.
func (h *ClientHandler) HardDelete(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid client ID")
	}

	if err := h.clients.HardDelete(c.UserContext(), profileID, clientID); err != nil {
		return writeError(c, "client.hard_delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pathID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
