package iorderstore

import (
	"context"
	"errors"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/status"
)

// ErrUnavailable marks failures caused by the durable store being
// unreachable. The service falls back to the degraded store on it.
var ErrUnavailable = errors.New("order store unavailable")

// Store is the persistence contract shared by the durable Postgres
// store and the in-memory degraded store.
type Store interface {
	// CreateOrder inserts the order and all of its lines atomically.
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)

	// GetOrder returns the order with lines in insertion order.
	GetOrder(ctx context.Context, id int64) (order.Order, error)

	// QueryOrders returns filtered orders, newest first, lines attached.
	QueryOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// UpdateStatus sets the status column. It rejects unrecognized
	// status values but does not check transition legality.
	UpdateStatus(ctx context.Context, id int64, newStatus status.Status) (order.Order, error)

	// DeleteOrder removes the order and its lines atomically and
	// reports whether a row existed.
	DeleteOrder(ctx context.Context, id int64) (bool, error)

	// Ping probes store liveness.
	Ping(ctx context.Context) error
}
