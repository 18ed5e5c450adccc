package handlers

import (
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}

	products, err := h.products.List(c.UserContext(), profileID, c.QueryBool("include_inactive"), c.Query("category"))
	if err != nil {
		return writeError(c, "product.list", err)
	}
	return c.JSON(fiber.Map{"products": products, "count": len(products)})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateProductRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	product, err := h.products.Create(c.UserContext(), profileID, &req)
	if err != nil {
		return writeError(c, "product.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	profileID, err := session.ProfileID(c)
	if err != nil {
		return unauthorized(c)
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req dto.UpdateProductRequest
	if msg, ok := parseBody(c, &req); !ok {
		return badRequest(c, msg)
	}

	product, err := h.products.Update(c.UserContext(), profileID, productID, &req)
	if err != nil {
		return writeError(c, "product.update", err)
	}
	return c.JSON(product)
}
