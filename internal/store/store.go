// Package store is the entity store the lifecycle services talk to. Every
// table is reached through a typed method; rows never leave this package as
// untyped maps.
package store

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/google/uuid"
)

type ProfilePatch struct {
	Name     *string
	Role     *string
	Approved *bool
}

type ClientPatch struct {
	Name        *string
	CompanyName *string
	SellerName  *string
	Address     *string
}

type ProductPatch struct {
	Name        *string
	Price       *float64
	Unit        *string
	Category    *string
	Active      *bool
	Description *string
	ImageURL    *string
}

type ClientFilter struct {
	IncludeDeleted bool
}

type ProductFilter struct {
	ActiveOnly bool
	Category   string
}

type OrderFilter struct {
	RepID    *uuid.UUID
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.Profile, error)
}

type ClientStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	// GetClientForShare reads a client and holds it against concurrent
	// writes until the surrounding transaction ends.
	GetClientForShare(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, id uuid.UUID, patch ClientPatch) (*models.Client, error)
	// MarkClientDeleted sets deleted_at only where it is still null.
	MarkClientDeleted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	// ClearClientDeleted clears deleted_at only where it is set.
	ClearClientDeleted(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteClient(ctx context.Context, id uuid.UUID) (int64, error)
}

type ProductStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error)
}

type OrderStore interface {
	CountOrdersByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	// GetOrder returns the order with its items loaded.
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type TokenStore interface {
	CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error
	FindActiveRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error
}

type AuditStore interface {
	CreateAuditEntry(ctx context.Context, e *models.AuditEntry) error
	ListAuditEntries(ctx context.Context, targetID uuid.UUID) ([]models.AuditEntry, error)
}

// Store is the full entity store. Transaction runs fn against a store bound
// to one transaction; a non-nil error from fn rolls everything back.
type Store interface {
	ProfileStore
	ClientStore
	ProductStore
	OrderStore
	TokenStore
	AuditStore

	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*memoryTx)(nil)
)
