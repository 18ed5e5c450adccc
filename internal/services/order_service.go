package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
)

// maxOrderTotal is the largest value a decimal(12,2) total_price holds.
const maxOrderTotal = 9_999_999_999.99

type OrderService struct {
	store   store.Store
	gate    *AccessGate
	timeout time.Duration
}

func NewOrderService(s store.Store, gate *AccessGate, timeout time.Duration) *OrderService {
	return &OrderService{store: s, gate: gate, timeout: timeout}
}

// Create writes the order header and its items in one transaction. The client
// and products are read under a share lock inside that transaction, so a soft
// delete or deactivation waits for the order to commit. Unit prices are
// copied onto the items; later price changes never touch them.
func (s *OrderService) Create(ctx context.Context, repID uuid.UUID, req *dto.CreateOrderRequest) (*models.Order, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	rep, err := s.gate.Approved(ctx, repID)
	if err != nil {
		return nil, err
	}
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	order := models.Order{
		ID:           uuid.New(),
		RepID:        rep.ID,
		ClientID:     req.ClientID,
		DeliveryDate: req.DeliveryDate.Time,
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		client, err := tx.GetClientForShare(ctx, req.ClientID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidClient
			}
			return err
		}
		if client.IsDeleted() {
			return ErrInvalidClient
		}

		products, err := tx.GetProducts(ctx, productIDs(req.Items))
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, ok := byID[line.ProductID]
			if !ok || !product.Active {
				return ErrInvalidProduct
			}
			items = append(items, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Unit:      product.Unit,
				Comment:   trimmed(line.Comment),
			})
		}
		order.TotalItems, order.TotalPrice = orderTotals(items)
		if order.TotalPrice > maxOrderTotal {
			return invalid("order total exceeds %.2f", maxOrderTotal)
		}

		if err := tx.CreateOrder(ctx, &order); err != nil {
			if errors.Is(err, store.ErrForeignKey) {
				return ErrInvalidClient
			}
			return err
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			if errors.Is(err, store.ErrForeignKey) {
				return ErrInvalidProduct
			}
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		if isTaxonomy(err) {
			return nil, err
		}
		return nil, storeErr("create order", err)
	}

	slog.Info("order created", "op", "order.create", "profile_id", rep.ID.String(), "entity_id", order.ID.String(),
		"client_id", order.ClientID.String(), "total_items", order.TotalItems, "total_price", order.TotalPrice)
	return &order, nil
}

// Get returns an order with its items. Sales reps only see their own orders;
// someone else's order looks exactly like a missing one.
func (s *OrderService) Get(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return nil, err
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if !actor.IsAdmin() && order.RepID != actor.ID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, actorID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	filter := store.OrderFilter{ClientID: clientID, Limit: limit, Offset: offset}
	if !actor.IsAdmin() {
		filter.RepID = &actor.ID
	}
	orders, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, storeErr("list orders", err)
	}
	return orders, total, nil
}

// Delete removes an order and its items. Admins may delete any order, reps
// only their own.
func (s *OrderService) Delete(ctx context.Context, actorID, orderID uuid.UUID) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return err
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return storeErr("delete order", err)
	}
	if !actor.IsAdmin() && order.RepID != actor.ID {
		return ErrNotFound
	}
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return storeErr("delete order", err)
	}

	slog.Info("order deleted", "op", "order.delete", "profile_id", actor.ID.String(), "entity_id", orderID.String())
	return nil
}

func validateOrderRequest(req *dto.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}
	if req.ClientID == uuid.Nil {
		return ErrInvalidClient
	}
	if req.DeliveryDate.IsZero() {
		return invalid("delivery date is required")
	}
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return invalid("line %d: quantity must be positive", i+1)
		}
		if line.Quantity > dto.MaxLineQuantity {
			return invalid("line %d: quantity exceeds %d", i+1, dto.MaxLineQuantity)
		}
		if line.ProductID == uuid.Nil {
			return ErrInvalidProduct
		}
	}
	return nil
}

func productIDs(lines []dto.OrderLineRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// orderTotals derives the header aggregates from the items, rounded to cents.
func orderTotals(items []models.OrderItem) (int, float64) {
	var count int
	var total float64
	for _, it := range items {
		count += it.Quantity
		total += float64(it.Quantity) * it.Price
	}
	return count, math.Round(total*100) / 100
}
