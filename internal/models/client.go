package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a store the sales reps sell to. DeletedAt is managed explicitly
// rather than through gorm.DeletedAt so that restore and the include-deleted
// listing stay visible in the queries.
type Client struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:255;check:name <> ''" json:"name"`
	CompanyName *string    `gorm:"size:255" json:"company_name"`
	SellerName  *string    `gorm:"size:255" json:"seller_name"`
	Address     *string    `gorm:"type:text" json:"address"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at"`
	Creator     *Profile   `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) IsDeleted() bool {
	return c.DeletedAt != nil
}

// CreatedByProfile reports whether the given profile created the client.
func (c *Client) CreatedByProfile(id uuid.UUID) bool {
	return c.CreatedBy != nil && *c.CreatedBy == id
}
