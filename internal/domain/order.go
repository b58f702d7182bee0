package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// OrderItem is a cart line frozen at confirmation time, with the line
// subtotal captured alongside the unit price.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Order is the record handed to the hosted backend. The backend owns
// the status lifecycle after insertion; this service only writes
// "pending" orders and reads them back.
type Order struct {
	ID            string      `json:"id"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	ShippingFee   float64     `json:"shipping_fee"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	CustomerName  string      `json:"customer_name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email,omitempty"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	State         string      `json:"state,omitempty"`
	Postcode      string      `json:"postcode"`
	Notes         string      `json:"notes,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	CreatedAt     time.Time   `json:"created_at"`
}
