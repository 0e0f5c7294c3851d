package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dinetrack/order/internal/dal/interfaces/iorderstore"
	"github.com/dinetrack/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/dinetrack/order/internal/hub"
	"github.com/dinetrack/order/internal/service/models/event"
	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/outbox"
	"github.com/dinetrack/order/internal/service/models/status"
	"github.com/spf13/viper"
)

// Routing keys for the outbox event mirror.
const (
	routingKeyOrderCreated       = "order.created"
	routingKeyOrderStatusChanged = "order.status_changed"
)

// publisher fans events out to subscribed realtime connections.
// Delivery failures stay inside the hub and never reach this service.
type publisher interface {
	Publish(topic string, eventName string, data any)
}

// OrderService owns the order lifecycle: validation, the status state
// machine, store failover, and event publication.
type OrderService struct {
	durable    iorderstore.Store
	fallback   iorderstore.Store
	pub        publisher
	outboxRepo ioutboxrepo.IOutboxRepository
	exchange   string

	// enforceTransitions switches between the full transition table
	// and the reference behavior of value recognition only.
	enforceTransitions bool

	degraded atomic.Bool
}

// Option is a function that configures the OrderService.
type Option func(*OrderService)

// MustNewOrderService creates a new OrderService. A fallback store is
// required; the durable store may be absent when the database is down
// at startup, in which case the service starts degraded.
func MustNewOrderService(opts ...Option) *OrderService {
	s := &OrderService{
		exchange:           viper.GetString("rabbitmq.exchange"),
		enforceTransitions: true,
	}
	if viper.IsSet("service.enforce_transitions") {
		s.enforceTransitions = viper.GetBool("service.enforce_transitions")
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.fallback == nil {
		panic("ordersvc: fallback store is required")
	}
	if s.durable == nil {
		s.degraded.Store(true)
	}

	return s
}

// WithDurableStore sets the durable store for the OrderService.
func WithDurableStore(store iorderstore.Store) Option {
	return func(s *OrderService) {
		s.durable = store
	}
}

// WithFallbackStore sets the degraded-mode store for the OrderService.
func WithFallbackStore(store iorderstore.Store) Option {
	return func(s *OrderService) {
		s.fallback = store
	}
}

// WithPublisher sets the notification publisher for the OrderService.
func WithPublisher(pub publisher) Option {
	return func(s *OrderService) {
		s.pub = pub
	}
}

// WithOutboxRepository enables the RabbitMQ event mirror.
func WithOutboxRepository(repo ioutboxrepo.IOutboxRepository) Option {
	return func(s *OrderService) {
		s.outboxRepo = repo
	}
}

// WithTransitionEnforcement overrides the configured transition policy.
func WithTransitionEnforcement(enforce bool) Option {
	return func(s *OrderService) {
		s.enforceTransitions = enforce
	}
}

// Degraded reports whether writes currently go to the volatile store.
// Surfaced through /health so callers learn about the data-loss window.
func (s *OrderService) Degraded() bool {
	return s.degraded.Load()
}

// PlaceOrder validates a placement request, persists it atomically and
// notifies the kitchen and the ordering table. The order is successful
// once persisted, independent of notification delivery.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	tableNumber int,
	lines []orderline.OrderLine,
	totalCents int64,
) (order.Order, error) {
	if tableNumber <= 0 {
		return order.Order{}, fmt.Errorf("%w: table number must be positive", order.ErrValidation)
	}
	if len(lines) == 0 {
		return order.Order{}, fmt.Errorf("%w: order has no items", order.ErrValidation)
	}
	if totalCents <= 0 {
		return order.Order{}, fmt.Errorf("%w: total must be positive", order.ErrValidation)
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return order.Order{}, fmt.Errorf("%w: item %q has quantity below 1", order.ErrValidation, l.Name)
		}
	}

	o := order.Order{
		TableNumber:      tableNumber,
		Lines:            lines,
		TotalCents:       totalCents,
		Status:           status.StatusPending,
		EstimatedMinutes: order.EstimateMinutes(lines),
	}

	created, err := s.withFailover(ctx, func(store iorderstore.Store) (order.Order, error) {
		return store.CreateOrder(ctx, o)
	})
	if err != nil {
		return order.Order{}, err
	}

	s.publish(hub.KitchenTopic, event.NameOrderCreated, event.OrderCreated{
		OrderID:          created.ID,
		TableNumber:      created.TableNumber,
		Items:            created.Lines,
		TotalCents:       created.TotalCents,
		Status:           created.Status,
		EstimatedMinutes: created.EstimatedMinutes,
		CreatedAt:        created.CreatedAt,
	})
	s.publish(hub.TableTopic(created.TableNumber), event.NameOrderConfirmed, event.OrderConfirmed{
		OrderID:          created.ID,
		Status:           created.Status,
		EstimatedMinutes: created.EstimatedMinutes,
	})

	s.enqueueOutbox(ctx, routingKeyOrderCreated, event.OrderCreated{
		OrderID:          created.ID,
		TableNumber:      created.TableNumber,
		Items:            created.Lines,
		TotalCents:       created.TotalCents,
		Status:           created.Status,
		EstimatedMinutes: created.EstimatedMinutes,
		CreatedAt:        created.CreatedAt,
	})

	return created, nil
}

// ChangeStatus advances the order through the state machine and
// notifies both the order's table and the kitchen. A request for the
// current status is a no-op success and publishes nothing.
func (s *OrderService) ChangeStatus(
	ctx context.Context,
	id int64,
	newStatus string,
) (order.Order, error) {
	target, err := status.ParseStatus(newStatus)
	if err != nil {
		return order.Order{}, err
	}

	if s.enforceTransitions {
		current, err := s.withFailover(ctx, func(store iorderstore.Store) (order.Order, error) {
			return store.GetOrder(ctx, id)
		})
		if err != nil {
			return order.Order{}, err
		}

		if current.Status == target {
			return current, nil
		}
		if !current.Status.CanTransitionTo(target) {
			return order.Order{}, fmt.Errorf(
				"%w: %s -> %s",
				status.ErrInvalidTransition, current.Status, target,
			)
		}
	}

	updated, err := s.withFailover(ctx, func(store iorderstore.Store) (order.Order, error) {
		return store.UpdateStatus(ctx, id, target)
	})
	if err != nil {
		return order.Order{}, err
	}

	changed := event.OrderStatusChanged{
		OrderID:   updated.ID,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	}
	s.publish(hub.TableTopic(updated.TableNumber), event.NameOrderStatusChanged, changed)
	s.publish(hub.KitchenTopic, event.NameOrderStatusChanged, changed)

	s.enqueueOutbox(ctx, routingKeyOrderStatusChanged, changed)

	return updated, nil
}

// GetOrder retrieves one order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (order.Order, error) {
	return s.withFailover(ctx, func(store iorderstore.Store) (order.Order, error) {
		return store.GetOrder(ctx, id)
	})
}

// GetOrders retrieves filtered orders, newest first.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	orders, err := s.activeStore().QueryOrders(ctx, filter)
	if err != nil && errors.Is(err, iorderstore.ErrUnavailable) && !s.degraded.Load() {
		s.markDegraded(err)

		return s.fallback.QueryOrders(ctx, filter)
	}

	return orders, err
}

// DeleteOrder removes an order and all of its lines.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	existed, err := s.activeStore().DeleteOrder(ctx, id)
	if err != nil && errors.Is(err, iorderstore.ErrUnavailable) && !s.degraded.Load() {
		s.markDegraded(err)

		return s.fallback.DeleteOrder(ctx, id)
	}

	return existed, err
}

// ProbeDurable checks durable store liveness and flips the active
// store accordingly. Run periodically by the app. Data written while
// degraded stays in memory; it is not migrated back.
func (s *OrderService) ProbeDurable(ctx context.Context) {
	if s.durable == nil {
		return
	}

	err := s.durable.Ping(ctx)
	switch {
	case err != nil && !s.degraded.Load():
		s.markDegraded(err)
	case err == nil && s.degraded.Load():
		s.degraded.Store(false)
		slog.Info("Durable store recovered, leaving degraded mode")
	}
}

func (s *OrderService) activeStore() iorderstore.Store {
	if s.degraded.Load() {
		return s.fallback
	}

	return s.durable
}

// withFailover runs op against the active store and redirects to the
// fallback for the remainder of the outage when the durable store
// turns out to be unreachable.
func (s *OrderService) withFailover(
	ctx context.Context,
	op func(iorderstore.Store) (order.Order, error),
) (order.Order, error) {
	o, err := op(s.activeStore())
	if err != nil && errors.Is(err, iorderstore.ErrUnavailable) && !s.degraded.Load() {
		s.markDegraded(err)

		return op(s.fallback)
	}

	return o, err
}

func (s *OrderService) markDegraded(cause error) {
	if s.degraded.CompareAndSwap(false, true) {
		slog.Warn("Durable store unreachable, entering degraded mode", "error", cause)
	}
}

func (s *OrderService) publish(topic string, eventName string, data any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(topic, eventName, data)
}

// enqueueOutbox mirrors a lifecycle event into the outbox table for
// export to RabbitMQ. Best effort: a failed enqueue is logged and
// never fails the originating request. Skipped while degraded, since
// the outbox lives in the unreachable database.
func (s *OrderService) enqueueOutbox(ctx context.Context, routingKey string, data any) {
	if s.outboxRepo == nil || s.degraded.Load() {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal outbox payload", "routing_key", routingKey, "error", err)

		return
	}

	now := time.Now()
	msg := outbox.Message{
		Exchange:    s.exchange,
		RoutingKey:  routingKey,
		Payload:     payload,
		ContentType: "application/json",
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}

	if err := s.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to enqueue outbox message", "routing_key", routingKey, "error", err)
	}
}
