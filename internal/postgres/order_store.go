package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"order-mesh/internal/orders"
)

// OrderStore persists orders in Postgres. Unit price is stored as numeric and
// scanned through its text form to keep the decimal exact.
type OrderStore struct{ DB *pgxpool.Pool }

func (s *OrderStore) Save(ctx context.Context, o *orders.Order) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO orders(id, product_id, product_name, customer_name, customer_email,
		                   quantity, unit_price, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at`,
		o.ID, o.ProductID, o.ProductName, o.CustomerName, o.CustomerEmail,
		o.Quantity, o.UnitPrice.String(), string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	return err
}

const orderColumns = `id, product_id, product_name, customer_name, customer_email,
                      quantity, unit_price::text, status, created_at, updated_at`

func (s *OrderStore) FindByID(ctx context.Context, id string) (*orders.Order, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	return o, err
}

func (s *OrderStore) FindByCustomerEmail(ctx context.Context, email string) ([]*orders.Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders
	                              WHERE customer_email=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var o orders.Order
	var price, status string
	if err := row.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.CustomerName, &o.CustomerEmail,
		&o.Quantity, &price, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := o.UnitPrice.UnmarshalText([]byte(price)); err != nil {
		return nil, err
	}
	o.Status = orders.Status(status)
	return &o, nil
}
