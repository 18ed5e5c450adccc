package models

import (
	"time"

	"github.com/google/uuid"
)

// Order ties one client to one sales rep. TotalItems and TotalPrice are
// always derived from Items.
type Order struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RepID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"rep_id"`
	ClientID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"client_id"`
	DeliveryDate time.Time   `gorm:"type:date;not null" json:"delivery_date"`
	TotalItems   int         `gorm:"not null;default:0" json:"total_items"`
	TotalPrice   float64     `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Rep          Profile     `gorm:"foreignKey:RepID;constraint:OnDelete:RESTRICT" json:"-"`
	Client       Client      `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. Price is the unit price captured when
// the order was created.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Unit      string    `gorm:"size:50" json:"unit"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
