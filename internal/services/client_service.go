package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
)

type ClientService struct {
	store   store.Store
	gate    *AccessGate
	timeout time.Duration
	now     func() time.Time
}

func NewClientService(s store.Store, gate *AccessGate, timeout time.Duration) *ClientService {
	return &ClientService{
		store:   s,
		gate:    gate,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ClientService) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateClientRequest) (*models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("client name is required")
	}

	client := models.Client{
		ID:          uuid.New(),
		Name:        name,
		CompanyName: trimmed(req.CompanyName),
		SellerName:  trimmed(req.SellerName),
		Address:     trimmed(req.Address),
		CreatedBy:   &actor.ID,
	}
	if err := s.store.CreateClient(ctx, &client); err != nil {
		return nil, storeErr("create client", err)
	}

	slog.Info("client created", "op", "client.create", "profile_id", actor.ID.String(), "entity_id", client.ID.String())
	return &client, nil
}

// Get returns a client to any approved profile, soft-deleted or not.
func (s *ClientService) Get(ctx context.Context, actorID, clientID uuid.UUID) (*models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.gate.Approved(ctx, actorID); err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, storeErr("get client", err)
	}
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, actorID, clientID uuid.UUID, req *dto.UpdateClientRequest) (*models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, client, err := s.resolveManaged(ctx, actorID, clientID)
	if err != nil {
		return nil, err
	}

	patch := store.ClientPatch{
		CompanyName: trimmed(req.CompanyName),
		SellerName:  trimmed(req.SellerName),
		Address:     trimmed(req.Address),
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("client name is required")
		}
		patch.Name = &name
	}

	updated, err := s.store.UpdateClient(ctx, client.ID, patch)
	if err != nil {
		return nil, storeErr("update client", err)
	}

	slog.Info("client updated", "op", "client.update", "profile_id", actor.ID.String(), "entity_id", client.ID.String())
	return updated, nil
}

// SoftDelete marks the client deleted. Deleting an already deleted client is
// a no-op and keeps the original deleted_at.
func (s *ClientService) SoftDelete(ctx context.Context, actorID, clientID uuid.UUID) (*models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, client, err := s.resolveManaged(ctx, actorID, clientID)
	if err != nil {
		return nil, err
	}
	if client.IsDeleted() {
		return client, nil
	}

	n, err := s.store.MarkClientDeleted(ctx, client.ID, s.now())
	if err != nil {
		return nil, storeErr("soft delete client", err)
	}

	current, err := s.store.GetClient(ctx, client.ID)
	if err != nil {
		return nil, storeErr("soft delete client", err)
	}
	if n == 0 && !current.IsDeleted() {
		return nil, ErrForbidden
	}

	slog.Info("client soft deleted", "op", "client.soft_delete", "profile_id", actor.ID.String(), "entity_id", client.ID.String())
	return current, nil
}

// Restore clears deleted_at. Restoring a live client is a no-op.
func (s *ClientService) Restore(ctx context.Context, actorID, clientID uuid.UUID) (*models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, client, err := s.resolveManaged(ctx, actorID, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsDeleted() {
		return client, nil
	}

	n, err := s.store.ClearClientDeleted(ctx, client.ID)
	if err != nil {
		return nil, storeErr("restore client", err)
	}

	current, err := s.store.GetClient(ctx, client.ID)
	if err != nil {
		return nil, storeErr("restore client", err)
	}
	if n == 0 && current.IsDeleted() {
		return nil, ErrForbidden
	}

	slog.Info("client restored", "op", "client.restore", "profile_id", actor.ID.String(), "entity_id", client.ID.String())
	return current, nil
}

// HardDelete removes a client permanently. Only admins may do it, and only
// while no order references the client. The order count and the delete are
// separate round trips, so a foreign key violation from the delete is
// reported the same way as a non-zero count.
func (s *ClientService) HardDelete(ctx context.Context, actorID, clientID uuid.UUID) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Admin(ctx, actorID)
	if err != nil {
		return err
	}

	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return storeErr("hard delete client", err)
	}

	count, err := s.store.CountOrdersByClient(ctx, clientID)
	if err != nil {
		return storeErr("count client orders", err)
	}
	if count > 0 {
		return ErrHasDependentOrders
	}

	n, err := s.store.DeleteClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			slog.Warn("order created during client hard delete", "op", "client.hard_delete", "profile_id", actor.ID.String(), "entity_id", clientID.String())
			return ErrHasDependentOrders
		}
		return storeErr("hard delete client", err)
	}
	if n == 0 {
		if _, err := s.store.GetClient(ctx, clientID); err == nil {
			return ErrForbidden
		}
		return ErrNotFound
	}

	slog.Info("client hard deleted", "op", "client.hard_delete", "profile_id", actor.ID.String(), "entity_id", clientID.String())
	return nil
}

// ListVisible returns every client to every approved profile; visibility
// does not depend on role or on who created the client.
func (s *ClientService) ListVisible(ctx context.Context, actorID uuid.UUID, includeDeleted bool) ([]models.Client, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.gate.Approved(ctx, actorID); err != nil {
		return nil, err
	}
	clients, err := s.store.ListClients(ctx, store.ClientFilter{IncludeDeleted: includeDeleted})
	if err != nil {
		return nil, storeErr("list clients", err)
	}
	return clients, nil
}

func (s *ClientService) resolveManaged(ctx context.Context, actorID, clientID uuid.UUID) (*models.Profile, *models.Client, error) {
	actor, err := s.gate.Approved(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, nil, storeErr("get client", err)
	}
	if !canManageClient(actor, client) {
		return nil, nil, ErrForbidden
	}
	return actor, client, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
