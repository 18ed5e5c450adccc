package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
)

// AccessGate resolves the acting profile on every call. Approval is never
// cached, so blocking a profile takes effect on its next request.
type AccessGate struct {
	profiles store.ProfileStore
}

func NewAccessGate(profiles store.ProfileStore) *AccessGate {
	return &AccessGate{profiles: profiles}
}

// Approved returns the actor if it exists and is approved. A missing profile
// and an unapproved one are indistinguishable to the caller.
func (g *AccessGate) Approved(ctx context.Context, actorID uuid.UUID) (*models.Profile, error) {
	actor, err := g.profiles.GetProfile(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, storeErr("resolve actor", err)
	}
	if !actor.Approved {
		return nil, ErrForbidden
	}
	return actor, nil
}

func (g *AccessGate) Admin(ctx context.Context, actorID uuid.UUID) (*models.Profile, error) {
	actor, err := g.Approved(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return actor, nil
}

// canManageClient is the creator-or-admin rule for soft delete, restore and edits.
func canManageClient(actor *models.Profile, client *models.Client) bool {
	return actor.IsAdmin() || client.CreatedByProfile(actor.ID)
}
