package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
)

type ProductService struct {
	store   store.Store
	gate    *AccessGate
	timeout time.Duration
}

func NewProductService(s store.Store, gate *AccessGate, timeout time.Duration) *ProductService {
	return &ProductService{store: s, gate: gate, timeout: timeout}
}

func (s *ProductService) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateProductRequest) (*models.Product, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Admin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("product name is required")
	}
	if req.Price < 0 || req.Price > maxOrderTotal {
		return nil, invalid("price must be between 0 and %.2f", maxOrderTotal)
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, invalid("unit is required")
	}

	product := models.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       req.Price,
		Unit:        unit,
		Category:    strings.TrimSpace(req.Category),
		Active:      req.Active == nil || *req.Active,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := s.store.CreateProduct(ctx, &product); err != nil {
		return nil, storeErr("create product", err)
	}

	slog.Info("product created", "op", "product.create", "profile_id", actor.ID.String(), "entity_id", product.ID.String())
	return &product, nil
}

// Update edits a product. Orders already placed keep the price they captured.
func (s *ProductService) Update(ctx context.Context, actorID, productID uuid.UUID, req *dto.UpdateProductRequest) (*models.Product, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("product name is required")
	}
	if req.Price != nil && (*req.Price < 0 || *req.Price > maxOrderTotal) {
		return nil, invalid("price must be between 0 and %.2f", maxOrderTotal)
	}
	if req.Unit != nil && strings.TrimSpace(*req.Unit) == "" {
		return nil, invalid("unit is required")
	}

	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, storeErr("update product", err)
	}

	product, err := s.store.UpdateProduct(ctx, productID, store.ProductPatch{
		Name:        trimmed(req.Name),
		Price:       req.Price,
		Unit:        trimmed(req.Unit),
		Category:    trimmed(req.Category),
		Active:      req.Active,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, storeErr("update product", err)
	}

	slog.Info("product updated", "op", "product.update", "profile_id", actor.ID.String(), "entity_id", product.ID.String())
	return product, nil
}

// List returns the catalogue. Inactive products are only listed for admins
// that ask for them.
func (s *ProductService) List(ctx context.Context, actorID uuid.UUID, includeInactive bool, category string) ([]models.Product, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filter := store.ProductFilter{
		ActiveOnly: !(includeInactive && actor.IsAdmin()),
		Category:   category,
	}
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return products, nil
}
