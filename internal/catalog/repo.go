package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgLedger is the Postgres-backed Ledger. Schema: postgres.Migrate.
type PgLedger struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, price::text, stock, category, image_url, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock,
		&p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("decode price %q: %w", price, err)
	}
	p.Price = d
	return p, nil
}

func (r *PgLedger) Create(ctx context.Context, p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price, stock, category, image_url)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		RETURNING `+productCols,
		p.ID, p.Name, p.Description, p.Price.String(), p.Stock, p.Category, p.ImageURL))
}

func (r *PgLedger) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PgLedger) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgLedger) HasStock(ctx context.Context, id string, qty int) (bool, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return stock >= qty, nil
}

// Adjust: lock baris produk (FOR UPDATE) -> cek stok -> update, dalam satu tx.
// Adjust lain untuk produk yang sama menunggu lock ini, jadi tidak bisa
// balapan melewati nol.
func (r *PgLedger) Adjust(ctx context.Context, id string, delta int) (Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, err
	}
	defer tx.Rollback(ctx)

	var stock int
	if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, id).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if stock+delta < 0 {
		return Product{}, ErrInsufficientStock // rollback via defer
	}

	p, err := scanProduct(tx.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id=$1
		RETURNING `+productCols, id, delta))
	if err != nil {
		return Product{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Product{}, err
	}
	return p, nil
}

var _ Ledger = (*PgLedger)(nil)
