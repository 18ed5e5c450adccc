package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *store.MemoryStore
	gate     *AccessGate
	clients  *ClientService
	orders   *OrderService
	products *ProductService
	profiles *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	return newFixtureWithStore(t, mem, mem)
}

// newFixtureWithStore wires the services to s while keeping direct access to
// the backing memory store for seeding and assertions.
func newFixtureWithStore(t *testing.T, mem *store.MemoryStore, s store.Store) *fixture {
	t.Helper()
	gate := NewAccessGate(s)
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    mem,
		gate:     gate,
		clients:  NewClientService(s, gate, time.Second),
		orders:   NewOrderService(s, gate, time.Second),
		products: NewProductService(s, gate, time.Second),
		profiles: NewProfileService(s, gate, time.Second),
	}
}

func (f *fixture) profile(role string, approved bool) *models.Profile {
	f.t.Helper()
	p := &models.Profile{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Name:     role,
		Role:     role,
		Approved: approved,
	}
	require.NoError(f.t, f.store.CreateProfile(f.ctx, p))
	return p
}

func (f *fixture) admin() *models.Profile {
	return f.profile(models.RoleAdmin, true)
}

func (f *fixture) rep() *models.Profile {
	return f.profile(models.RoleSalesRep, true)
}

func (f *fixture) client(creator *models.Profile, name string) *models.Client {
	f.t.Helper()
	c, err := f.clients.Create(f.ctx, creator.ID, &dto.CreateClientRequest{Name: name})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) product(name string, price float64) *models.Product {
	f.t.Helper()
	p := &models.Product{ID: uuid.New(), Name: name, Price: price, Unit: "pcs", Category: "general", Active: true}
	require.NoError(f.t, f.store.CreateProduct(f.ctx, p))
	return p
}

func (f *fixture) order(rep *models.Profile, client *models.Client, lines ...dto.OrderLineRequest) *models.Order {
	f.t.Helper()
	o, err := f.orders.Create(f.ctx, rep.ID, orderRequest(client.ID, lines...))
	require.NoError(f.t, err)
	return o
}

func orderRequest(clientID uuid.UUID, lines ...dto.OrderLineRequest) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		ClientID:     clientID,
		DeliveryDate: dto.Date{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Items:        lines,
	}
}

func line(p *models.Product, qty int) dto.OrderLineRequest {
	return dto.OrderLineRequest{ProductID: p.ID, Quantity: qty}
}

func clientIDs(clients []models.Client) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	return ids
}
