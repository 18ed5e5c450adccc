package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Price       float64   `gorm:"type:decimal(12,2);not null;check:price >= 0" json:"price"`
	Unit        string    `gorm:"size:50;not null" json:"unit"`
	Category    string    `gorm:"size:100;index" json:"category"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"type:text" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
