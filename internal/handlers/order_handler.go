package handlers

import (
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxPageSize = 100

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create places an order for the caller. Header and items are written in one
// transaction; any failure leaves nothing behind.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateOrderRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	order, err := h.orders.Create(c.UserContext(), profileID, &req)
	if err != nil {
		return writeError(c, "order.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}

	order, err := h.orders.Get(c.UserContext(), profileID, orderID)
	if err != nil {
		return writeError(c, "order.get", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}

	var clientID *uuid.UUID
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid client ID")
		}
		clientID = &id
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > maxPageSize {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	orders, total, err := h.orders.List(c.UserContext(), profileID, clientID, limit, offset)
	if err != nil {
		return writeError(c, "order.list", err)
	}
	return c.JSON(fiber.Map{"orders": orders, "total": total, "limit": limit, "offset": offset})
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}

	if err := h.orders.Delete(c.UserContext(), profileID, orderID); err != nil {
		return writeError(c, "order.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
