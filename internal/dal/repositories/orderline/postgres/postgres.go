package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dinetrack/order/internal/service/models/orderline"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OrderLineDal represents order line data access layer model.
type OrderLineDal struct {
	Id          int64  `db:"id"`
	OrderId     int64  `db:"order_id"`
	Name        string `db:"name"`
	PriceCents  int64  `db:"price_cents"`
	Quantity    int    `db:"quantity"`
	Category    string `db:"category"`
	Image       string `db:"image"`
	PrepMinutes int    `db:"prep_minutes"`
}

// ToModel converts OrderLineDal to service layer OrderLine model.
func (l *OrderLineDal) ToModel() *orderline.OrderLine {
	return &orderline.OrderLine{
		ID:          l.Id,
		OrderID:     l.OrderId,
		Name:        l.Name,
		PriceCents:  l.PriceCents,
		Quantity:    l.Quantity,
		Category:    l.Category,
		Image:       l.Image,
		PrepMinutes: l.PrepMinutes,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx.
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderLineRepository represents a Postgres order line repository.
type PostgresOrderLineRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderLineRepository creates a new Postgres order line repository.
func NewPostgresOrderLineRepository(conn GenericConn) *PostgresOrderLineRepository {
	return &PostgresOrderLineRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const lineColumns = "id, order_id, name, price_cents, quantity, category, image, prep_minutes"

// BulkInsert inserts all lines and returns them with generated ids,
// preserving input order.
func (r *PostgresOrderLineRepository) BulkInsert(
	ctx context.Context,
	lines []orderline.OrderLine,
) ([]orderline.OrderLine, error) {
	if len(lines) == 0 {
		return []orderline.OrderLine{}, nil
	}

	builder := r.sb.Insert("order_items").
		Columns("order_id", "name", "price_cents", "quantity", "category", "image", "prep_minutes")
	for _, l := range lines {
		builder = builder.Values(l.OrderID, l.Name, l.PriceCents, l.Quantity, l.Category, l.Image, l.PrepMinutes)
	}

	query, args, err := builder.
		Suffix("RETURNING " + lineColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order lines: %w", err)
	}
	defer rows.Close()

	result, err := scanLines(rows)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// QueryByOrderIDs retrieves lines for the given orders, ordered by id
// so each order's lines come back in insertion order.
func (r *PostgresOrderLineRepository) QueryByOrderIDs(
	ctx context.Context,
	orderIDs []int64,
) ([]orderline.OrderLine, error) {
	if len(orderIDs) == 0 {
		return []orderline.OrderLine{}, nil
	}

	query, args, err := r.sb.Select(lineColumns).
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	result, err := scanLines(rows)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func scanLines(rows pgx.Rows) ([]orderline.OrderLine, error) {
	var result []orderline.OrderLine
	for rows.Next() {
		var dal OrderLineDal
		if err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.Name,
			&dal.PriceCents,
			&dal.Quantity,
			&dal.Category,
			&dal.Image,
			&dal.PrepMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
