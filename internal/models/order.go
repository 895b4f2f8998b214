package models

import "time"

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// CartItem is one line of an order's cart, pinned to the shop that fulfils it.
type CartItem struct {
	ProductID string `json:"productId"`
	ShopID    string `json:"shopId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type Order struct {
	ID          string
	UserID      string
	Cart        []CartItem
	TotalPrice  int64
	AddressID   *string
	Status      OrderStatus
	PaidAt      *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Payment records a verified gateway payment, keyed by the gateway's
// order/payment identifiers and the signature that proved them.
type Payment struct {
	ID               string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	CreatedAt        time.Time
}
