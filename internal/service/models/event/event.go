package event

import (
	"time"

	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
)

// Event names pushed to realtime clients.
const (
	NameOrderCreated       = "orderCreated"
	NameOrderConfirmed     = "orderConfirmed"
	NameOrderStatusChanged = "orderStatusChanged"
)

// OrderCreated is delivered to the kitchen topic when an order is placed.
type OrderCreated struct {
	OrderID          int64                 `json:"orderId"`
	TableNumber      int                   `json:"tableNumber"`
	Items            []orderline.OrderLine `json:"items"`
	TotalCents       int64                 `json:"total"`
	Status           status.Status         `json:"status"`
	EstimatedMinutes int                   `json:"estimatedMinutes"`
	CreatedAt        time.Time             `json:"createdAt"`
}

// OrderConfirmed is delivered to the ordering table's topic when an
// order is placed.
type OrderConfirmed struct {
	OrderID          int64         `json:"orderId"`
	Status           status.Status `json:"status"`
	EstimatedMinutes int           `json:"estimatedMinutes"`
}

// OrderStatusChanged is delivered to both the order's table topic and
// the kitchen topic after a status update.
type OrderStatusChanged struct {
	OrderID   int64         `json:"orderId"`
	Status    status.Status `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
