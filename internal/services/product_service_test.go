package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCatalogue(t *testing.T) {
	f := newFixture(t)
	admin := f.admin()
	rep := f.rep()

	_, err := f.products.Create(f.ctx, rep.ID, &dto.CreateProductRequest{Name: "Tea", Price: 2, Unit: "box"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.products.Create(f.ctx, admin.ID, &dto.CreateProductRequest{Name: "Tea", Price: -1, Unit: "box"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.products.Create(f.ctx, admin.ID, &dto.CreateProductRequest{Name: "Tea", Price: 1e10, Unit: "box"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tea, err := f.products.Create(f.ctx, admin.ID, &dto.CreateProductRequest{Name: "Tea", Price: 2, Unit: "box", Category: "drinks"})
	require.NoError(t, err)
	assert.True(t, tea.Active)

	off := false
	hidden, err := f.products.Create(f.ctx, admin.ID, &dto.CreateProductRequest{Name: "Legacy", Price: 1, Unit: "pcs", Active: &off})
	require.NoError(t, err)

	forRep, err := f.products.List(f.ctx, rep.ID, true, "")
	require.NoError(t, err)
	require.Len(t, forRep, 1)
	assert.Equal(t, tea.ID, forRep[0].ID)

	forAdmin, err := f.products.List(f.ctx, admin.ID, true, "")
	require.NoError(t, err)
	assert.Len(t, forAdmin, 2)

	drinks, err := f.products.List(f.ctx, admin.ID, true, "drinks")
	require.NoError(t, err)
	assert.Len(t, drinks, 1)

	on := true
	revived, err := f.products.Update(f.ctx, admin.ID, hidden.ID, &dto.UpdateProductRequest{Active: &on})
	require.NoError(t, err)
	assert.True(t, revived.Active)

	_, err = f.products.Update(f.ctx, admin.ID, uuid.New(), &dto.UpdateProductRequest{Active: &on})
	assert.ErrorIs(t, err, ErrNotFound)
}
