package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/google/uuid"
)

type memoryState struct {
	profiles   map[uuid.UUID]models.Profile
	clients    map[uuid.UUID]models.Client
	products   map[uuid.UUID]models.Product
	orders     map[uuid.UUID]models.Order
	orderItems map[uuid.UUID]models.OrderItem
	tokens     map[string]models.RefreshToken
	audit      []models.AuditEntry
}

func newMemoryState() *memoryState {
	return &memoryState{
		profiles:   map[uuid.UUID]models.Profile{},
		clients:    map[uuid.UUID]models.Client{},
		products:   map[uuid.UUID]models.Product{},
		orders:     map[uuid.UUID]models.Order{},
		orderItems: map[uuid.UUID]models.OrderItem{},
		tokens:     map[string]models.RefreshToken{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	c.audit = append([]models.AuditEntry(nil), s.audit...)
	return c
}

// MemoryStore is an in-process entity store with the same referential rules
// as the PostgreSQL schema: foreign keys are checked on insert and delete,
// and transactions are serialised and rolled back from a snapshot.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memoryTx{state: m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctxErr(ctx)
}

// locked runs fn against the live state under the store mutex.
func (m *MemoryStore) locked(ctx context.Context, fn func(tx *memoryTx) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryTx{state: m.state})
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap(ErrTimeout, err)
	}
	return nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, id uuid.UUID) (p *models.Profile, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { p, err = tx.GetProfile(ctx, id); return err })
	return p, err
}

func (m *MemoryStore) FindProfileByEmail(ctx context.Context, email string) (p *models.Profile, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { p, err = tx.FindProfileByEmail(ctx, email); return err })
	return p, err
}

func (m *MemoryStore) ListProfiles(ctx context.Context) (out []models.Profile, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, err = tx.ListProfiles(ctx); return err })
	return out, err
}

func (m *MemoryStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateProfile(ctx, p) })
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (p *models.Profile, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { p, err = tx.UpdateProfile(ctx, id, patch); return err })
	return p, err
}

func (m *MemoryStore) GetClient(ctx context.Context, id uuid.UUID) (c *models.Client, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { c, err = tx.GetClient(ctx, id); return err })
	return c, err
}

func (m *MemoryStore) GetClientForShare(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return m.GetClient(ctx, id)
}

func (m *MemoryStore) ListClients(ctx context.Context, filter ClientFilter) (out []models.Client, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, err = tx.ListClients(ctx, filter); return err })
	return out, err
}

func (m *MemoryStore) CreateClient(ctx context.Context, c *models.Client) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateClient(ctx, c) })
}

func (m *MemoryStore) UpdateClient(ctx context.Context, id uuid.UUID, patch ClientPatch) (c *models.Client, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { c, err = tx.UpdateClient(ctx, id, patch); return err })
	return c, err
}

func (m *MemoryStore) MarkClientDeleted(ctx context.Context, id uuid.UUID, at time.Time) (n int64, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { n, err = tx.MarkClientDeleted(ctx, id, at); return err })
	return n, err
}

func (m *MemoryStore) ClearClientDeleted(ctx context.Context, id uuid.UUID) (n int64, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { n, err = tx.ClearClientDeleted(ctx, id); return err })
	return n, err
}

func (m *MemoryStore) DeleteClient(ctx context.Context, id uuid.UUID) (n int64, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { n, err = tx.DeleteClient(ctx, id); return err })
	return n, err
}

func (m *MemoryStore) GetProduct(ctx context.Context, id uuid.UUID) (p *models.Product, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { p, err = tx.GetProduct(ctx, id); return err })
	return p, err
}

func (m *MemoryStore) GetProducts(ctx context.Context, ids []uuid.UUID) (out []models.Product, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, err = tx.GetProducts(ctx, ids); return err })
	return out, err
}

func (m *MemoryStore) ListProducts(ctx context.Context, filter ProductFilter) (out []models.Product, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, err = tx.ListProducts(ctx, filter); return err })
	return out, err
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateProduct(ctx, p) })
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (p *models.Product, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { p, err = tx.UpdateProduct(ctx, id, patch); return err })
	return p, err
}

func (m *MemoryStore) CountOrdersByClient(ctx context.Context, clientID uuid.UUID) (n int64, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { n, err = tx.CountOrdersByClient(ctx, clientID); return err })
	return n, err
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateOrder(ctx, o) })
}

func (m *MemoryStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return m.Transaction(ctx, func(tx Store) error { return tx.CreateOrderItems(ctx, items) })
}

func (m *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (o *models.Order, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { o, err = tx.GetOrder(ctx, id); return err })
	return o, err
}

func (m *MemoryStore) ListOrders(ctx context.Context, filter OrderFilter) (out []models.Order, total int64, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, total, err = tx.ListOrders(ctx, filter); return err })
	return out, total, err
}

func (m *MemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.DeleteOrder(ctx, id) })
}

func (m *MemoryStore) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateRefreshToken(ctx, t) })
}

func (m *MemoryStore) FindActiveRefreshToken(ctx context.Context, hash string) (t *models.RefreshToken, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { t, err = tx.FindActiveRefreshToken(ctx, hash); return err })
	return t, err
}

func (m *MemoryStore) RevokeRefreshToken(ctx context.Context, hash string) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.RevokeRefreshToken(ctx, hash) })
}

func (m *MemoryStore) CreateAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	return m.locked(ctx, func(tx *memoryTx) error { return tx.CreateAuditEntry(ctx, e) })
}

func (m *MemoryStore) ListAuditEntries(ctx context.Context, targetID uuid.UUID) (out []models.AuditEntry, err error) {
	err = m.locked(ctx, func(tx *memoryTx) error { out, err = tx.ListAuditEntries(ctx, targetID); return err })
	return out, err
}

// memoryTx operates on a state the caller already holds the lock for.
type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	snapshot := tx.state.clone()
	if err := fn(tx); err != nil {
		*tx.state = *snapshot
		return err
	}
	return nil
}

func (tx *memoryTx) Ping(ctx context.Context) error {
	return ctxErr(ctx)
}

func (tx *memoryTx) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := tx.state.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (tx *memoryTx) FindProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	for _, p := range tx.state.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (tx *memoryTx) ListProfiles(_ context.Context) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(tx.state.profiles))
	for _, p := range tx.state.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (tx *memoryTx) CreateProfile(_ context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := tx.state.profiles[p.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range tx.state.profiles {
		if existing.Email == p.Email {
			return ErrDuplicate
		}
	}
	if p.Role == "" {
		p.Role = models.RoleSalesRep
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	tx.state.profiles[p.ID] = *p
	return nil
}

func (tx *memoryTx) UpdateProfile(_ context.Context, id uuid.UUID, patch ProfilePatch) (*models.Profile, error) {
	p, ok := tx.state.profiles[id]
	if !ok {
		return nil, ErrNoRows
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if patch.Approved != nil {
		p.Approved = *patch.Approved
	}
	p.UpdatedAt = time.Now().UTC()
	tx.state.profiles[id] = p
	return &p, nil
}

func (tx *memoryTx) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	c, ok := tx.state.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// GetClientForShare needs no extra lock: a memory transaction already holds
// the store mutex.
func (tx *memoryTx) GetClientForShare(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return tx.GetClient(ctx, id)
}

func (tx *memoryTx) ListClients(_ context.Context, filter ClientFilter) ([]models.Client, error) {
	out := make([]models.Client, 0, len(tx.state.clients))
	for _, c := range tx.state.clients {
		if c.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tx *memoryTx) CreateClient(_ context.Context, c *models.Client) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCheck
	}
	if c.CreatedBy != nil {
		if _, ok := tx.state.profiles[*c.CreatedBy]; !ok {
			return ErrForeignKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := tx.state.clients[c.ID]; ok {
		return ErrDuplicate
	}
	c.CreatedAt = time.Now().UTC()
	tx.state.clients[c.ID] = *c
	return nil
}

func (tx *memoryTx) UpdateClient(_ context.Context, id uuid.UUID, patch ClientPatch) (*models.Client, error) {
	c, ok := tx.state.clients[id]
	if !ok {
		return nil, ErrNoRows
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, ErrCheck
		}
		c.Name = *patch.Name
	}
	if patch.CompanyName != nil {
		c.CompanyName = patch.CompanyName
	}
	if patch.SellerName != nil {
		c.SellerName = patch.SellerName
	}
	if patch.Address != nil {
		c.Address = patch.Address
	}
	tx.state.clients[id] = c
	return &c, nil
}

func (tx *memoryTx) MarkClientDeleted(_ context.Context, id uuid.UUID, at time.Time) (int64, error) {
	c, ok := tx.state.clients[id]
	if !ok || c.DeletedAt != nil {
		return 0, nil
	}
	at = at.UTC()
	c.DeletedAt = &at
	tx.state.clients[id] = c
	return 1, nil
}

func (tx *memoryTx) ClearClientDeleted(_ context.Context, id uuid.UUID) (int64, error) {
	c, ok := tx.state.clients[id]
	if !ok || c.DeletedAt == nil {
		return 0, nil
	}
	c.DeletedAt = nil
	tx.state.clients[id] = c
	return 1, nil
}

func (tx *memoryTx) DeleteClient(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := tx.state.clients[id]; !ok {
		return 0, nil
	}
	for _, o := range tx.state.orders {
		if o.ClientID == id {
			return 0, ErrForeignKey
		}
	}
	delete(tx.state.clients, id)
	return 1, nil
}

func (tx *memoryTx) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := tx.state.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (tx *memoryTx) GetProducts(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := tx.state.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (tx *memoryTx) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	out := make([]models.Product, 0, len(tx.state.products))
	for _, p := range tx.state.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (tx *memoryTx) CreateProduct(_ context.Context, p *models.Product) error {
	if p.Price < 0 {
		return ErrCheck
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := tx.state.products[p.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	tx.state.products[p.ID] = *p
	return nil
}

func (tx *memoryTx) UpdateProduct(_ context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	p, ok := tx.state.products[id]
	if !ok {
		return nil, ErrNoRows
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, ErrCheck
		}
		p.Price = *patch.Price
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	p.UpdatedAt = time.Now().UTC()
	tx.state.products[id] = p
	return &p, nil
}

func (tx *memoryTx) CountOrdersByClient(_ context.Context, clientID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range tx.state.orders {
		if o.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (tx *memoryTx) CreateOrder(_ context.Context, o *models.Order) error {
	if _, ok := tx.state.clients[o.ClientID]; !ok {
		return ErrForeignKey
	}
	if _, ok := tx.state.profiles[o.RepID]; !ok {
		return ErrForeignKey
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if _, ok := tx.state.orders[o.ID]; ok {
		return ErrDuplicate
	}
	o.CreatedAt = time.Now().UTC()
	row := *o
	row.Items = nil
	tx.state.orders[o.ID] = row
	return nil
}

func (tx *memoryTx) CreateOrderItems(_ context.Context, items []models.OrderItem) error {
	// One INSERT: every row is checked before any is written.
	for _, it := range items {
		if _, ok := tx.state.orders[it.OrderID]; !ok {
			return ErrForeignKey
		}
		if _, ok := tx.state.products[it.ProductID]; !ok {
			return ErrForeignKey
		}
		if it.Quantity <= 0 {
			return ErrCheck
		}
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		tx.state.orderItems[items[i].ID] = items[i]
	}
	return nil
}

func (tx *memoryTx) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := tx.state.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Items = tx.itemsFor(id)
	return &o, nil
}

func (tx *memoryTx) itemsFor(orderID uuid.UUID) []models.OrderItem {
	var items []models.OrderItem
	for _, it := range tx.state.orderItems {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	return items
}

func (tx *memoryTx) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range tx.state.orders {
		if filter.RepID != nil && o.RepID != *filter.RepID {
			continue
		}
		if filter.ClientID != nil && o.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := int64(len(out))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (tx *memoryTx) DeleteOrder(_ context.Context, id uuid.UUID) error {
	for itemID, it := range tx.state.orderItems {
		if it.OrderID == id {
			delete(tx.state.orderItems, itemID)
		}
	}
	delete(tx.state.orders, id)
	return nil
}

func (tx *memoryTx) CreateRefreshToken(_ context.Context, t *models.RefreshToken) error {
	if _, ok := tx.state.profiles[t.ProfileID]; !ok {
		return ErrForeignKey
	}
	if _, ok := tx.state.tokens[t.TokenHash]; ok {
		return ErrDuplicate
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()
	tx.state.tokens[t.TokenHash] = *t
	return nil
}

func (tx *memoryTx) FindActiveRefreshToken(_ context.Context, hash string) (*models.RefreshToken, error) {
	t, ok := tx.state.tokens[hash]
	if !ok || t.Revoked() {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (tx *memoryTx) RevokeRefreshToken(_ context.Context, hash string) error {
	if t, ok := tx.state.tokens[hash]; ok && !t.Revoked() {
		now := time.Now().UTC()
		t.RevokedAt = &now
		tx.state.tokens[hash] = t
	}
	return nil
}

func (tx *memoryTx) CreateAuditEntry(_ context.Context, e *models.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	tx.state.audit = append(tx.state.audit, *e)
	return nil
}

func (tx *memoryTx) ListAuditEntries(_ context.Context, targetID uuid.UUID) ([]models.AuditEntry, error) {
	var out []models.AuditEntry
	for i := len(tx.state.audit) - 1; i >= 0; i-- {
		if tx.state.audit[i].TargetID == targetID {
			out = append(out, tx.state.audit[i])
		}
	}
	return out, nil
}
