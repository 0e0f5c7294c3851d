package memorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
)

// Store is the volatile fallback used while the durable store is
// unreachable. All data is lost on restart and never reconciled back.
type Store struct {
	mu         sync.RWMutex
	orders     map[int64]order.Order
	nextID     int64
	nextLineID int64
}

// NewStore creates an empty in-memory order store.
func NewStore() *Store {
	return &Store{
		orders:     make(map[int64]order.Order),
		nextID:     1,
		nextLineID: 1,
	}
}

// CreateOrder assigns ids and stores the order with its lines.
// Ids are monotonic and never reused, even after deletes.
func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if len(o.Lines) == 0 {
		return order.Order{}, fmt.Errorf("%w: order has no lines", order.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = now
	o.UpdatedAt = now

	lines := make([]orderline.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	for i := range lines {
		lines[i].ID = s.nextLineID
		s.nextLineID++
		lines[i].OrderID = o.ID
	}
	o.Lines = lines

	s.orders[o.ID] = o

	return cloneOrder(o), nil
}

// GetOrder returns the order with lines in insertion order.
func (s *Store) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	return cloneOrder(o), nil
}

// QueryOrders returns filtered orders, newest first.
func (s *Store) QueryOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter != nil {
			if filter.Status != "" && o.Status != filter.Status {
				continue
			}
			if filter.TableNumber > 0 && o.TableNumber != filter.TableNumber {
				continue
			}
		}
		result = append(result, cloneOrder(o))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}

		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus sets the status and refreshes the update timestamp.
// Like the durable store it checks value recognition only.
func (s *Store) UpdateStatus(
	ctx context.Context,
	id int64,
	newStatus status.Status,
) (order.Order, error) {
	if _, err := status.ParseStatus(newStatus.String()); err != nil {
		return order.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()
	s.orders[id] = o

	return cloneOrder(o), nil
}

// DeleteOrder removes the order together with its lines.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.orders[id]
	if ok {
		delete(s.orders, id)
	}

	return ok, nil
}

// Ping always succeeds; process memory is as alive as we are.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Len reports the number of stored orders, for diagnostics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.orders)
}

func cloneOrder(o order.Order) order.Order {
	lines := make([]orderline.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines

	return o
}
