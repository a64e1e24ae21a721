package postgres

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/orderflow/order-service/internal/order/domain"
)

//go:embed schema.sql
var schema string

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// EnsureSchema creates the orders tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// Save writes the aggregate in one transaction. Item rows are deleted
// explicitly before reinsert so an update never leaves orphans. No version
// column: concurrent updates to one order id are last-write-wins.
func (r *Repository) Save(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_device_token, shipping_address, total_amount, order_date, status, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
			ON CONFLICT (id) DO UPDATE SET customer_name=$2, customer_email=$3, customer_phone=$4, customer_device_token=$5, shipping_address=$6, total_amount=$7, status=$9, updated_at=now()`,
		o.ID, o.CustomerName, o.CustomerEmail, nullable(o.CustomerPhone), nullable(o.CustomerDeviceToken), o.ShippingAddress, o.TotalAmount.String(), o.OrderDate, string(o.Status))
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (order_id, product_id) DO UPDATE SET product_name=$3, unit_price=$4, quantity=order_items.quantity+$5`,
			o.ID, item.ProductID, item.ProductName, item.UnitPrice.String(), item.Quantity)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, customer_name, customer_email, COALESCE(customer_phone,''), COALESCE(customer_device_token,''), shipping_address, total_amount::text, order_date, status, updated_at`

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC`)
}

func (r *Repository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_email=$1 ORDER BY order_date DESC`, email)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY order_date DESC`, string(status))
}

func (r *Repository) ListWithoutCancelled(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE status <> $1 ORDER BY order_date DESC`, string(domain.StatusCancelled))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return tx.Commit(ctx)
}

func (r *Repository) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE status=$1 AND order_date < $2)`,
		string(domain.StatusCancelled), cutoff)
	if err != nil {
		return 0, err
	}
	ct, err := tx.Exec(ctx, `DELETE FROM orders WHERE status=$1 AND order_date < $2`,
		string(domain.StatusCancelled), cutoff)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `SELECT product_id, product_name, unit_price::text, quantity FROM order_items WHERE order_id=$1 ORDER BY product_id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var price string
		if err := rows.Scan(&item.ProductID, &item.ProductName, &price, &item.Quantity); err != nil {
			return err
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var total, status string
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerDeviceToken,
		&o.ShippingAddress, &total, &o.OrderDate, &status, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.Status(status)
	return o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
