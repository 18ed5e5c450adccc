package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClientTrimsAndRequiresName(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()

	_, err := f.clients.Create(f.ctx, rep.ID, &dto.CreateClientRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	company := "  Acme LLC "
	c, err := f.clients.Create(f.ctx, rep.ID, &dto.CreateClientRequest{Name: " Corner Shop ", CompanyName: &company})
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", c.Name)
	assert.Equal(t, "Acme LLC", *c.CompanyName)
	assert.True(t, c.CreatedByProfile(rep.ID))
	assert.Nil(t, c.DeletedAt)
}

func TestSoftDeleteAndRestoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()
	before := f.client(rep, "Bakery")

	deleted, err := f.clients.SoftDelete(f.ctx, rep.ID, before.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)

	restored, err := f.clients.Restore(f.ctx, rep.ID, before.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)

	assert.Equal(t, before.Name, restored.Name)
	assert.Equal(t, before.CompanyName, restored.CompanyName)
	assert.Equal(t, before.SellerName, restored.SellerName)
	assert.Equal(t, before.Address, restored.Address)
	assert.Equal(t, before.CreatedBy, restored.CreatedBy)

	again, err := f.clients.Restore(f.ctx, rep.ID, before.ID)
	require.NoError(t, err)
	assert.Nil(t, again.DeletedAt)
}

func TestSoftDeleteTwiceKeepsFirstTimestamp(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()
	c := f.client(rep, "Kiosk")

	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	f.clients.now = func() time.Time { return first }
	_, err := f.clients.SoftDelete(f.ctx, rep.ID, c.ID)
	require.NoError(t, err)

	f.clients.now = func() time.Time { return first.Add(time.Hour) }
	second, err := f.clients.SoftDelete(f.ctx, rep.ID, c.ID)
	require.NoError(t, err)
	require.NotNil(t, second.DeletedAt)
	assert.True(t, second.DeletedAt.Equal(first))
}

func TestSoftDeleteKeepsReferencingOrders(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()
	c := f.client(rep, "Deli")
	o := f.order(rep, c, line(f.product("Milk", 1.5), 4))

	_, err := f.clients.SoftDelete(f.ctx, rep.ID, c.ID)
	require.NoError(t, err)

	stored, err := f.store.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ClientID)
	assert.Len(t, stored.Items, 1)
}

func TestSoftDeleteAuthorization(t *testing.T) {
	f := newFixture(t)
	creator := f.rep()
	other := f.rep()
	admin := f.admin()
	c := f.client(creator, "Pharmacy")

	_, err := f.clients.SoftDelete(f.ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.clients.SoftDelete(f.ctx, admin.ID, c.ID)
	assert.NoError(t, err)

	_, err = f.clients.Restore(f.ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.clients.Restore(f.ctx, creator.ID, c.ID)
	assert.NoError(t, err)

	_, err = f.clients.SoftDelete(f.ctx, admin.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHardDeleteWithoutOrders(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	rep := f.rep()
	c := f.client(rep, "Florist")

	require.NoError(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID))

	for _, viewer := range []uuid.UUID{admin.ID, rep.ID} {
		visible, err := f.clients.ListVisible(f.ctx, viewer, true)
		require.NoError(t, err)
		assert.NotContains(t, clientIDs(visible), c.ID)
	}

	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID), ErrNotFound)
}

func TestHardDeleteBlockedByOrders(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	rep := f.rep()
	c := f.client(rep, "Butcher")
	f.order(rep, c, line(f.product("Salt", 0.5), 1))

	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID), ErrHasDependentOrders)

	// Soft-deleted clients with orders are still protected.
	_, err := f.clients.SoftDelete(f.ctx, admin.ID, c.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID), ErrHasDependentOrders)

	_, err = f.store.GetClient(f.ctx, c.ID)
	assert.NoError(t, err)
}

// staleCountStore reports zero orders, as if an order was inserted between
// the precondition check and the delete.
type staleCountStore struct {
	store.Store
}

func (staleCountStore) CountOrdersByClient(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func TestHardDeleteRaceMapsForeignKeyViolation(t *testing.T) {
	mem := store.NewMemoryStore()
	f := newFixtureWithStore(t, mem, staleCountStore{Store: mem})
	admin := f.admin()
	rep := f.rep()
	c := f.client(rep, "Grocer")
	f.order(rep, c, line(f.product("Rice", 2), 3))

	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID), ErrHasDependentOrders)

	_, err := mem.GetClient(f.ctx, c.ID)
	assert.NoError(t, err)
}

func TestHardDeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()
	c := f.client(rep, "Cafe")

	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, rep.ID, c.ID), ErrForbidden)
}

func TestListVisibleIsRoleIndependent(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	repA := f.rep()
	repB := f.rep()

	a := f.client(repA, "Alpha")
	b := f.client(repB, "Beta")
	gone := f.client(admin, "Gamma")
	_, err := f.clients.SoftDelete(f.ctx, admin.ID, gone.ID)
	require.NoError(t, err)

	var seen [][]uuid.UUID
	for _, viewer := range []uuid.UUID{admin.ID, repA.ID, repB.ID} {
		visible, err := f.clients.ListVisible(f.ctx, viewer, false)
		require.NoError(t, err)
		seen = append(seen, clientIDs(visible))
	}
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, seen[0])
	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, seen[0], seen[2])

	all, err := f.clients.ListVisible(f.ctx, repA.ID, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, gone.ID}, clientIDs(all))
}

func TestUnapprovedProfileCannotWrite(t *testing.T) {
	f := newFixture(t)
	pending := f.profile("sales_rep", false)
	admin := f.profile("admin", false)
	owner := f.rep()
	c := f.client(owner, "Market")
	p := f.product("Tea", 3)

	_, err := f.clients.Create(f.ctx, pending.ID, &dto.CreateClientRequest{Name: "X"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.clients.SoftDelete(f.ctx, admin.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.clients.Restore(f.ctx, admin.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.clients.HardDelete(f.ctx, admin.ID, c.ID), ErrForbidden)
	_, err = f.orders.Create(f.ctx, pending.ID, orderRequest(c.ID, line(p, 1)))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.clients.ListVisible(f.ctx, pending.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.store.GetClient(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DeletedAt)
	orders, _, err := f.store.ListOrders(f.ctx, store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	clients, err := f.store.ListClients(f.ctx, store.ClientFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestUnapprovedActorCannotProbeExistence(t *testing.T) {
	f := newFixture(t)
	pending := f.profile("sales_rep", false)
	c := f.client(f.rep(), "Real")

	_, errExisting := f.clients.SoftDelete(f.ctx, pending.ID, c.ID)
	_, errMissing := f.clients.SoftDelete(f.ctx, pending.ID, uuid.New())
	assert.ErrorIs(t, errExisting, ErrForbidden)
	assert.ErrorIs(t, errMissing, ErrForbidden)
	assert.Equal(t, errExisting.Error(), errMissing.Error())

	_, errUnknown := f.clients.Get(f.ctx, uuid.New(), c.ID)
	assert.ErrorIs(t, errUnknown, ErrForbidden)
}

func TestBlockedProfileFailsOnNextCall(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	rep := f.rep()
	c := f.client(rep, "Stall")

	_, err := f.profiles.SetApproved(f.ctx, admin.ID, rep.ID, false)
	require.NoError(t, err)

	_, err = f.clients.SoftDelete(f.ctx, rep.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.store.GetClient(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DeletedAt)
}

// noRowsStore hides every write from the caller, the way a row policy does.
type noRowsStore struct {
	store.Store
}

func (noRowsStore) MarkClientDeleted(context.Context, uuid.UUID, time.Time) (int64, error) {
	return 0, nil
}

func TestPolicyFilteredWriteIsForbidden(t *testing.T) {
	mem := store.NewMemoryStore()
	f := newFixtureWithStore(t, mem, noRowsStore{Store: mem})
	rep := f.rep()
	c := f.client(rep, "Hidden")

	_, err := f.clients.SoftDelete(f.ctx, rep.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateClient(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()
	other := f.rep()
	c := f.client(rep, "Old name")

	name := "New name"
	updated, err := f.clients.Update(f.ctx, rep.ID, c.ID, &dto.UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)

	_, err = f.clients.Update(f.ctx, other.ID, c.ID, &dto.UpdateClientRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	blank := " "
	_, err = f.clients.Update(f.ctx, rep.ID, c.ID, &dto.UpdateClientRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCallerDeadlineSurfacesAsTimeout(t *testing.T) {
	f := newFixture(t)
	rep := f.rep()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := f.clients.ListVisible(ctx, rep.ID, false)
	assert.ErrorIs(t, err, ErrTimeout)
}
