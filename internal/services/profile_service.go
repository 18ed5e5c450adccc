package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AuditSetRole     = "profile.set_role"
	AuditSetApproved = "profile.set_approved"
)

// ProfileService owns role and approval changes. Every change is written
// together with an audit entry in one transaction.
type ProfileService struct {
	store   store.Store
	gate    *AccessGate
	timeout time.Duration
}

func NewProfileService(s store.Store, gate *AccessGate, timeout time.Duration) *ProfileService {
	return &ProfileService{store: s, gate: gate, timeout: timeout}
}

// Me returns the caller's own profile, approved or not.
func (s *ProfileService) Me(ctx context.Context, actorID uuid.UUID) (*models.Profile, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	profile, err := s.store.GetProfile(ctx, actorID)
	if err != nil {
		return nil, storeErr("get profile", err)
	}
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context, actorID uuid.UUID) ([]models.Profile, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.gate.Admin(ctx, actorID); err != nil {
		return nil, err
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, storeErr("list profiles", err)
	}
	return profiles, nil
}

func (s *ProfileService) SetRole(ctx context.Context, actorID, targetID uuid.UUID, role string) (*models.Profile, error) {
	if !models.ValidRole(role) {
		return nil, invalid("role must be admin or sales_rep")
	}
	return s.change(ctx, actorID, targetID, AuditSetRole, func(p *models.Profile) (store.ProfilePatch, interface{}, interface{}) {
		return store.ProfilePatch{Role: &role}, p.Role, role
	})
}

// SetApproved approves or blocks a profile. A blocked profile keeps its
// tokens, but every later call fails at the access gate.
func (s *ProfileService) SetApproved(ctx context.Context, actorID, targetID uuid.UUID, approved bool) (*models.Profile, error) {
	return s.change(ctx, actorID, targetID, AuditSetApproved, func(p *models.Profile) (store.ProfilePatch, interface{}, interface{}) {
		return store.ProfilePatch{Approved: &approved}, p.Approved, approved
	})
}

type profileChange func(current *models.Profile) (patch store.ProfilePatch, from, to interface{})

func (s *ProfileService) change(ctx context.Context, actorID, targetID uuid.UUID, action string, fn profileChange) (*models.Profile, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	actor, err := s.gate.Admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID == targetID {
		return nil, invalid("admins cannot change their own role or approval")
	}

	var updated *models.Profile
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.GetProfile(ctx, targetID)
		if err != nil {
			return err
		}
		patch, from, to := fn(current)

		updated, err = tx.UpdateProfile(ctx, targetID, patch)
		if err != nil {
			return err
		}

		details, err := json.Marshal(map[string]interface{}{"from": from, "to": to})
		if err != nil {
			return err
		}
		return tx.CreateAuditEntry(ctx, &models.AuditEntry{
			ID:       uuid.New(),
			ActorID:  actor.ID,
			TargetID: targetID,
			Action:   action,
			Details:  datatypes.JSON(details),
		})
	})
	if err != nil {
		return nil, storeErr(action, err)
	}

	slog.Info("profile changed", "op", action, "profile_id", actor.ID.String(), "entity_id", targetID.String())
	return updated, nil
}

func (s *ProfileService) History(ctx context.Context, actorID, targetID uuid.UUID) ([]models.AuditEntry, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.gate.Admin(ctx, actorID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListAuditEntries(ctx, targetID)
	if err != nil {
		return nil, storeErr("list audit entries", err)
	}
	return entries, nil
}
