package uow

import (
	"context"

	"github.com/dinetrack/order/internal/dal/postgres"
	orderrepo "github.com/dinetrack/order/internal/dal/repositories/order/postgres"
	orderlinerepo "github.com/dinetrack/order/internal/dal/repositories/orderline/postgres"
	outboxrepo "github.com/dinetrack/order/internal/dal/repositories/outbox/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork scopes repositories to one transaction so an order and
// its lines commit or roll back together.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     *orderrepo.PostgresOrderRepository
	orderLineRepo *orderlinerepo.PostgresOrderLineRepository
	outboxRepo    *outboxrepo.OutboxRepository
}

// NewUnitOfWork creates a unit of work backed by the pool. Until Begin
// is called the repositories run outside a transaction.
func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	pool := client.Pool()

	return &UnitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderLineRepo: orderlinerepo.NewPostgresOrderLineRepository(pool),
		outboxRepo:    outboxrepo.NewOutboxRepository(pool),
	}
}

func (u *UnitOfWork) OrderRepository() *orderrepo.PostgresOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderLineRepository() *orderlinerepo.PostgresOrderLineRepository {
	return u.orderLineRepo
}

func (u *UnitOfWork) OutboxRepository() *outboxrepo.OutboxRepository {
	return u.outboxRepo
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderLineRepo = orderlinerepo.NewPostgresOrderLineRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
