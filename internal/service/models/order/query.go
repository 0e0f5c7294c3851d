package order

import "github.com/dinetrack/order/internal/service/models/status"

// QueryOrdersModel represents filter parameters for querying orders.
// Zero values mean "no filter".
type QueryOrdersModel struct {
	Status      status.Status `json:"status,omitempty"`
	TableNumber int           `json:"tableNumber,omitempty"`
}
