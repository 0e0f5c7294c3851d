package postgresstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dinetrack/order/internal/dal/interfaces/iorderstore"
	"github.com/dinetrack/order/internal/dal/postgres"
	"github.com/dinetrack/order/internal/dal/uow"
	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
)

// Store is the durable order store backed by Postgres.
type Store struct {
	client *postgres.Client
}

// NewStore creates a new Postgres-backed order store.
func NewStore(client *postgres.Client) *Store {
	return &Store{client: client}
}

func (s *Store) newUOW() *uow.UnitOfWork {
	return uow.NewUnitOfWork(s.client)
}

// CreateOrder inserts the order row and all line rows in one
// transaction. Readers never observe an order without its lines.
func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if len(o.Lines) == 0 {
		return order.Order{}, fmt.Errorf("%w: order has no lines", order.ErrValidation)
	}

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, unavailable("begin transaction", err)
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, unavailable("insert order", err)
	}

	lines := make([]orderline.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	for i := range lines {
		lines[i].OrderID = inserted.ID
	}

	insertedLines, err := work.OrderLineRepository().BulkInsert(ctx, lines)
	if err != nil {
		return order.Order{}, unavailable("insert order lines", err)
	}
	inserted.Lines = insertedLines

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, unavailable("commit transaction", err)
	}

	return inserted, nil
}

// GetOrder retrieves one order with its lines in insertion order.
func (s *Store) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().Get(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, err
		}

		return order.Order{}, unavailable("get order", err)
	}

	lines, err := work.OrderLineRepository().QueryByOrderIDs(ctx, []int64{id})
	if err != nil {
		return order.Order{}, unavailable("get order lines", err)
	}
	o.Lines = lines

	return o, nil
}

// QueryOrders retrieves filtered orders, newest first, lines attached.
func (s *Store) QueryOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, unavailable("query orders", err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	lines, err := work.OrderLineRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, unavailable("query order lines", err)
	}

	for i := range orders {
		for _, l := range lines {
			if l.OrderID == orders[i].ID {
				orders[i].Lines = append(orders[i].Lines, l)
			}
		}
	}

	return orders, nil
}

// UpdateStatus sets the status column. Transition legality is the
// service's concern; only value recognition is checked here.
func (s *Store) UpdateStatus(
	ctx context.Context,
	id int64,
	newStatus status.Status,
) (order.Order, error) {
	if _, err := status.ParseStatus(newStatus.String()); err != nil {
		return order.Order{}, err
	}

	work := s.newUOW()

	o, err := work.OrderRepository().UpdateStatus(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, err
		}

		return order.Order{}, unavailable("update order status", err)
	}

	lines, err := work.OrderLineRepository().QueryByOrderIDs(ctx, []int64{id})
	if err != nil {
		return order.Order{}, unavailable("get order lines", err)
	}
	o.Lines = lines

	return o, nil
}

// DeleteOrder removes the order; its lines go with it via the FK cascade.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	work := s.newUOW()

	existed, err := work.OrderRepository().Delete(ctx, id)
	if err != nil {
		return false, unavailable("delete order", err)
	}

	return existed, nil
}

// Ping probes database liveness.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(iorderstore.ErrUnavailable, err))
}
