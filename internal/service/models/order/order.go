package order

import (
	"errors"
	"time"

	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
)

var (
	ErrNotFound   = errors.New("order not found")
	ErrValidation = errors.New("invalid order")
)

// Order represents one placed order tied to a table.
type Order struct {
	ID               int64                 `json:"id"`
	TableNumber      int                   `json:"tableNumber"`
	Lines            []orderline.OrderLine `json:"items"`
	TotalCents       int64                 `json:"total"`
	Status           status.Status         `json:"status"`
	EstimatedMinutes int                   `json:"estimatedMinutes"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// EstimateMinutes derives the prep estimate for a set of lines:
// the slowest line plus a fixed buffer.
func EstimateMinutes(lines []orderline.OrderLine) int {
	est := 0
	for _, l := range lines {
		if p := l.EffectivePrepMinutes(); p > est {
			est = p
		}
	}

	return est + 5
}
