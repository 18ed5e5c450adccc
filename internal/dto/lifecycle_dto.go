package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateClientRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	SellerName  *string `json:"seller_name" validate:"omitempty,max=255"`
	Address     *string `json:"address"`
}

type UpdateClientRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	SellerName  *string `json:"seller_name" validate:"omitempty,max=255"`
	Address     *string `json:"address"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gte=0,lte=9999999999.99"`
	Unit        string  `json:"unit" validate:"required,max=50"`
	Category    string  `json:"category" validate:"max=100"`
	Active      *bool   `json:"active"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=9999999999.99"`
	Unit        *string  `json:"unit"`
	Category    *string  `json:"category"`
	Active      *bool    `json:"active"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
}

// MaxLineQuantity caps a single order line. The validate tag below repeats it.
const MaxLineQuantity = 1_000_000

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"gt=0,max=1000000"`
	Comment   *string   `json:"comment"`
}

type CreateOrderRequest struct {
	ClientID     uuid.UUID          `json:"client_id"`
	DeliveryDate Date               `json:"delivery_date"`
	Items        []OrderLineRequest `json:"items" validate:"dive"`
}

// Date accepts either a calendar date ("2006-01-02") or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type SetApprovedRequest struct {
	Approved bool `json:"approved"`
}
