package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every state in display order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Order is a placed order. It owns its Items; deleting the order row
// cascades to them at the storage level.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"size:64;not null;uniqueIndex" json:"order_number"`
	CustomerName    string          `gorm:"size:255;not null" json:"customer_name"`
	CustomerPhone   string          `gorm:"size:50;not null" json:"customer_phone"`
	CustomerEmail   string          `gorm:"size:255" json:"customer_email"`
	CustomerAddress string          `gorm:"type:text;not null" json:"customer_address"`
	Notes           string          `gorm:"type:text" json:"notes"`
	PaymentMethod   PaymentMethod   `gorm:"size:20;not null;default:cash" json:"payment_method"`
	Status          OrderStatus     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"subtotal"`
	Shipping        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"shipping"`
	Total           decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"total"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. Product name and price are frozen at
// order time; ProductID is a plain reference with no foreign key, so
// deleting a product never touches historical items.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"product_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Total        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}
