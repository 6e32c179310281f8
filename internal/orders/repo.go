package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgStore is the Postgres-backed Store. Schema: postgres.Migrate.
type PgStore struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, product_id, quantity, total_price::text, status,
	payment_method, shipping_address, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (Order, error) {
	var (
		o     Order
		total string
		st    string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &total, &st,
		&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return Order{}, fmt.Errorf("decode total_price %q: %w", total, err)
	}
	o.TotalPrice = d
	o.Status = Status(st)
	return o, nil
}

func (r *PgStore) Insert(ctx context.Context, o Order) (Order, error) {
	o.ID = uuid.NewString()
	row := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, product_id, quantity, total_price, status,
		                   payment_method, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10)
		RETURNING `+orderCols,
		o.ID, o.UserID, o.ProductID, o.Quantity, o.TotalPrice.String(), string(o.Status),
		o.PaymentMethod, o.ShippingAddress, o.CreatedAt, o.UpdatedAt,
	)
	return scanOrder(row)
}

func (r *PgStore) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NewOrderNotFound(id)
	}
	return o, err
}

// UpdateStatusIf: conditional UPDATE, rows affected 0 -> cek apakah order ada.
func (r *PgStore) UpdateStatusIf(ctx context.Context, id string, from, to Status) (Order, bool, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+orderCols, id, string(from), string(to)))
	if err == nil {
		return o, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Order{}, false, err
	}
	cur, err := r.Get(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	return cur, false, nil
}

func (r *PgStore) List(ctx context.Context) ([]Order, error) {
	return r.query(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at`)
}

func (r *PgStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.query(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at`, userID)
}

func (r *PgStore) ListByStatus(ctx context.Context, s Status) ([]Order, error) {
	return r.query(ctx, `SELECT `+orderCols+` FROM orders WHERE status=$1 ORDER BY created_at`, string(s))
}

func (r *PgStore) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

var _ Store = (*PgStore)(nil)
