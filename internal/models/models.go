package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Customer struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Orders    []OrderSummary `json:"orders,omitempty"`
}

// OrderSummary is the order shape embedded in customer and shipment
// reads: no line items, no nested relations.
type OrderSummary struct {
	ID        int64           `json:"id"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Stock       *Stock          `json:"stock,omitempty"`
}

type Stock struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	// Available is quantity minus reserved, computed at read time and
	// never stored.
	Available int       `json:"available_quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Customer   *Customer       `json:"customer,omitempty"`
	Items      []OrderItem     `json:"items,omitempty"`
	Shipment   *Shipment       `json:"shipment,omitempty"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Shipment struct {
	ID                    int64          `json:"id"`
	OrderID               int64          `json:"order_id"`
	TrackingCode          string         `json:"tracking_code"`
	Status                ShipmentStatus `json:"status"`
	Carrier               string         `json:"carrier"`
	EstimatedDeliveryDate string         `json:"estimated_delivery_date"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	Order                 *OrderSummary  `json:"order,omitempty"`
}
