package store

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the PostgreSQL-backed entity store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return classify(s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	}))
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return classify(sqlDB.PingContext(ctx))
}

// --- profiles ---

func (s *GormStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (s *GormStore) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.conn(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

func (s *GormStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.conn(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, classify(err)
	}
	return profiles, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return classify(s.conn(ctx).Create(p).Error)
}

func (s *GormStore) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.Profile, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Approved != nil {
		updates["approved"] = *patch.Approved
	}

	result := s.conn(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRows
	}
	return s.GetProfile(ctx, id)
}

// --- clients ---

func (s *GormStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (s *GormStore) GetClientForShare(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "SHARE"}).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (s *GormStore) ListClients(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	var clients []models.Client
	query := s.conn(ctx).Model(&models.Client{})
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, classify(err)
	}
	return clients, nil
}

func (s *GormStore) CreateClient(ctx context.Context, c *models.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return classify(s.conn(ctx).Omit(clause.Associations).Create(c).Error)
}

func (s *GormStore) UpdateClient(ctx context.Context, id uuid.UUID, patch ClientPatch) (*models.Client, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.CompanyName != nil {
		updates["company_name"] = *patch.CompanyName
	}
	if patch.SellerName != nil {
		updates["seller_name"] = *patch.SellerName
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if len(updates) == 0 {
		return s.GetClient(ctx, id)
	}

	result := s.conn(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRows
	}
	return s.GetClient(ctx, id)
}

func (s *GormStore) MarkClientDeleted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := s.conn(ctx).Model(&models.Client{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	return result.RowsAffected, classify(result.Error)
}

func (s *GormStore) ClearClientDeleted(ctx context.Context, id uuid.UUID) (int64, error) {
	result := s.conn(ctx).Model(&models.Client{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", gorm.Expr("NULL"))
	return result.RowsAffected, classify(result.Error)
}

func (s *GormStore) DeleteClient(ctx context.Context, id uuid.UUID) (int64, error) {
	result := s.conn(ctx).Where("id = ?", id).Delete(&models.Client{})
	return result.RowsAffected, classify(result.Error)
}

// --- products ---

func (s *GormStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// GetProducts locks the returned rows until the surrounding transaction ends
// so a concurrent deactivation cannot slip between validation and insert.
func (s *GormStore) GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, classify(err)
	}
	return products, nil
}

func (s *GormStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	query := s.conn(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if err := query.Order("category ASC, name ASC").Find(&products).Error; err != nil {
		return nil, classify(err)
	}
	return products, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// Select("*") so an explicit Active=false is written instead of the column default.
	return classify(s.conn(ctx).Select("*").Create(p).Error)
}

func (s *GormStore) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Unit != nil {
		updates["unit"] = *patch.Unit
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	result := s.conn(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRows
	}
	return s.GetProduct(ctx, id)
}

// --- orders ---

func (s *GormStore) CountOrdersByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Order{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, classify(err)
}

func (s *GormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return classify(s.conn(ctx).Omit(clause.Associations).Create(o).Error)
}

func (s *GormStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return classify(s.conn(ctx).Omit(clause.Associations).CreateInBatches(items, 100).Error)
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := s.conn(ctx).Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &o, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := s.conn(ctx).Model(&models.Order{})
	if filter.RepID != nil {
		query = query.Where("rep_id = ?", *filter.RepID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, classify(err)
	}
	return orders, total, nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.Transaction(ctx, func(tx Store) error {
		db := tx.(*GormStore).conn(ctx)
		if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return db.Where("id = ?", id).Delete(&models.Order{}).Error
	})
}

// --- refresh tokens ---

func (s *GormStore) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return classify(s.conn(ctx).Omit(clause.Associations).Create(t).Error)
}

func (s *GormStore) FindActiveRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := s.conn(ctx).Where("token_hash = ? AND revoked_at IS NULL", hash).First(&t).Error; err != nil {
		return nil, classify(err)
	}
	return &t, nil
}

func (s *GormStore) RevokeRefreshToken(ctx context.Context, hash string) error {
	return classify(s.conn(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now().UTC()).Error)
}

// --- audit ---

func (s *GormStore) CreateAuditEntry(ctx context.Context, e *models.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return classify(s.conn(ctx).Create(e).Error)
}

func (s *GormStore) ListAuditEntries(ctx context.Context, targetID uuid.UUID) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := s.conn(ctx).Where("target_id = ?", targetID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, classify(err)
	}
	return entries, nil
}
