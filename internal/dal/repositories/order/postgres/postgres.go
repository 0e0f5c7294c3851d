package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dinetrack/order/internal/service/models/order"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/dinetrack/order/internal/service/models/status"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id               int64     `db:"id"`
	TableNo          int       `db:"table_no"`
	TotalCents       int64     `db:"total_cents"`
	Status           string    `db:"status"`
	EstimatedMinutes int       `db:"estimated_minutes"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	st, err := status.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:               o.Id,
		TableNumber:      o.TableNo,
		TotalCents:       o.TotalCents,
		Status:           st,
		EstimatedMinutes: o.EstimatedMinutes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Lines:            []orderline.OrderLine{}, // Attached separately
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const orderColumns = "id, table_no, total_cents, status, estimated_minutes, created_at, updated_at"

// Insert inserts one order row and returns it with the generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := r.sb.Insert("orders").
		Columns("table_no", "total_cents", "status", "estimated_minutes", "created_at", "updated_at").
		Values(o.TableNumber, o.TotalCents, o.Status.String(), o.EstimatedMinutes, o.CreatedAt, o.UpdatedAt).
		Suffix("RETURNING " + orderColumns).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	dal, err := r.scanOne(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, err
	}
	model.Lines = o.Lines

	return *model, nil
}

// Get retrieves one order row by id, without lines.
func (r *PostgresOrderRepository) Get(ctx context.Context, id int64) (order.Order, error) {
	query, args, err := r.sb.Select(orderColumns).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	dal, err := r.scanOne(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, err
	}

	return *model, nil
}

// Query retrieves orders based on filter criteria, newest first,
// without lines.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := r.sb.Select(orderColumns).
		From("orders").
		OrderBy("created_at DESC, id DESC")

	if filter != nil {
		if filter.Status != "" {
			builder = builder.Where(sq.Eq{"status": filter.Status.String()})
		}
		if filter.TableNumber > 0 {
			builder = builder.Where(sq.Eq{"table_no": filter.TableNumber})
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(
			&dal.Id,
			&dal.TableNo,
			&dal.TotalCents,
			&dal.Status,
			&dal.EstimatedMinutes,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateStatus sets the status column and refreshes updated_at.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	newStatus status.Status,
) (order.Order, error) {
	query, args, err := r.sb.Update("orders").
		Set("status", newStatus.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + orderColumns).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	dal, err := r.scanOne(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}

		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, err
	}

	return *model, nil
}

// Delete removes one order row. Lines are removed by the FK cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Delete("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PostgresOrderRepository) scanOne(row pgx.Row) (OrderDal, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.TableNo,
		&dal.TotalCents,
		&dal.Status,
		&dal.EstimatedMinutes,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)

	return dal, err
}
