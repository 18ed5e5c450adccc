package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, m *MemoryStore) (*models.Profile, *models.Client, *models.Product) {
	t.Helper()
	ctx := context.Background()
	rep := &models.Profile{Email: "rep@example.com", Role: models.RoleSalesRep, Approved: true}
	require.NoError(t, m.CreateProfile(ctx, rep))
	client := &models.Client{Name: "Shop", CreatedBy: &rep.ID}
	require.NoError(t, m.CreateClient(ctx, client))
	product := &models.Product{Name: "Milk", Price: 1.2, Unit: "l", Active: true}
	require.NoError(t, m.CreateProduct(ctx, product))
	return rep, client, product
}

func TestMemoryStoreForeignKeys(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	rep, client, product := seed(t, m)

	err := m.CreateOrder(ctx, &models.Order{RepID: rep.ID, ClientID: uuid.New()})
	assert.ErrorIs(t, err, ErrForeignKey)

	order := &models.Order{RepID: rep.ID, ClientID: client.ID, TotalItems: 1, TotalPrice: 1.2}
	require.NoError(t, m.CreateOrder(ctx, order))
	require.NoError(t, m.CreateOrderItems(ctx, []models.OrderItem{{OrderID: order.ID, ProductID: product.ID, Quantity: 1, Price: 1.2}}))

	_, err = m.DeleteClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrForeignKey)

	n, err := m.CountOrdersByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, m.DeleteOrder(ctx, order.ID))
	n, err = m.DeleteClient(ctx, client.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMemoryStoreOrderItemsAreAtomic(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	rep, client, product := seed(t, m)

	order := &models.Order{RepID: rep.ID, ClientID: client.ID}
	require.NoError(t, m.CreateOrder(ctx, order))

	err := m.CreateOrderItems(ctx, []models.OrderItem{
		{OrderID: order.ID, ProductID: product.ID, Quantity: 1},
		{OrderID: order.ID, ProductID: uuid.New(), Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrForeignKey)

	stored, err := m.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Items)
}

func TestMemoryStoreTransactionRollback(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_, client, _ := seed(t, m)

	boom := errors.New("boom")
	err := m.Transaction(ctx, func(tx Store) error {
		if _, err := tx.MarkClientDeleted(ctx, client.ID, time.Now()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := m.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DeletedAt)
}

func TestMemoryStoreSoftDeleteIsConditional(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_, client, _ := seed(t, m)

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n, err := m.MarkClientDeleted(ctx, client.ID, first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.MarkClientDeleted(ctx, client.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	visible, err := m.ListClients(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := m.ListClients(ctx, ClientFilter{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].DeletedAt.Equal(first))

	n, err = m.ClearClientDeleted(ctx, client.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = m.ClearClientDeleted(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreChecks(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, m.CreateClient(ctx, &models.Client{Name: "  "}), ErrCheck)
	assert.ErrorIs(t, m.CreateProduct(ctx, &models.Product{Name: "x", Price: -1}), ErrCheck)

	p := &models.Profile{Email: "a@example.com"}
	require.NoError(t, m.CreateProfile(ctx, p))
	assert.Equal(t, models.RoleSalesRep, p.Role)
	assert.ErrorIs(t, m.CreateProfile(ctx, &models.Profile{Email: "a@example.com"}), ErrDuplicate)

	_, err := m.UpdateProfile(ctx, uuid.New(), ProfilePatch{})
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.ListClients(ctx, ClientFilter{})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}
