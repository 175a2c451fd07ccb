package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/order"
	"github.com/xenking/salescore/internal/domain/voucher"
)

const (
	getOrderSQL = `SELECT id, customer_id, branch_id, voucher_id, has_voucher,
		discount, total_amount, cancelled_items_amount, status, created_at
		FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT id, product_id, quantity, price, cancelled
		FROM order_items WHERE order_id = $1 ORDER BY id`

	insertOrderSQL = `INSERT INTO orders (id, customer_id, branch_id, voucher_id, has_voucher,
		discount, total_amount, cancelled_items_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateOrderSQL = `UPDATE orders SET voucher_id = $2, has_voucher = $3, discount = $4,
		total_amount = $5, cancelled_items_amount = $6, status = $7
		WHERE id = $1`

	upsertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, price = EXCLUDED.price, cancelled = EXCLUDED.cancelled`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Items
// live in their own table and are cascade-deleted with the order.
type OrderRepository struct {
	pool     *pgxpool.Pool
	vouchers *VoucherRepository
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool:     pool,
		vouchers: NewVoucherRepository(pool),
	}
}

// GetByID loads the full aggregate: order row, item rows, and the associated
// voucher when one is referenced. Returns order.ErrNotFound when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	q := conn(ctx, r.pool)

	var (
		orderID, customerID, branchID          uuid.UUID
		voucherID                              uuid.NullUUID
		hasVoucher                             bool
		discount, totalAmount, cancelledAmount decimal.Decimal
		status                                 string
		createdAt                              time.Time
	)
	err := q.QueryRow(ctx, getOrderSQL, id).Scan(
		&orderID, &customerID, &branchID, &voucherID, &hasVoucher,
		&discount, &totalAmount, &cancelledAmount, &status, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}

	rows, err := q.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get items for order %s", id)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "scan items for order %s", id)
	}

	// Attach the voucher so recalculation after item mutations can re-derive
	// the discount. A deleted voucher row is tolerated: the stored discount
	// stays in effect.
	var v *voucher.Voucher
	if voucherID.Valid {
		v, err = r.vouchers.getByID(ctx, voucherID.UUID)
		if err != nil {
			return nil, err
		}
	}

	return order.Restore(
		orderID, customerID, branchID, voucherID, hasVoucher,
		discount, totalAmount, cancelledAmount,
		createdAt, order.Status(status), items, v,
	), nil
}

// Add persists a new order together with its items.
func (r *OrderRepository) Add(ctx context.Context, o *order.Order) error {
	q := conn(ctx, r.pool)

	_, err := q.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerID, o.BranchID, o.VoucherID, o.HasVoucher,
		o.Discount, o.TotalAmount, o.CancelledItemsAmount, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %s", o.ID)
	}
	return r.writeItems(ctx, q, o)
}

// Update persists the order row and upserts every item. Items are never
// removed: cancelled lines stay with cancelled = TRUE.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	q := conn(ctx, r.pool)

	tag, err := q.Exec(ctx, updateOrderSQL,
		o.ID, o.VoucherID, o.HasVoucher, o.Discount,
		o.TotalAmount, o.CancelledItemsAmount, string(o.Status),
	)
	if err != nil {
		return errors.Wrapf(err, "update order %s", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return r.writeItems(ctx, q, o)
}

// Delete removes the order; items go with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete order %s", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// writeItems upserts all items in a single batch round-trip.
func (r *OrderRepository) writeItems(ctx context.Context, q db, o *order.Order) error {
	if len(o.Items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(upsertOrderItemSQL,
			item.ID, o.ID, item.ProductID, item.Quantity, item.Price, item.Cancelled,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	for range o.Items {
		if _, err := results.Exec(); err != nil {
			return errors.Wrapf(err, "write items for order %s", o.ID)
		}
	}
	return results.Close()
}

func scanOrderItem(row pgx.CollectableRow) (*order.Item, error) {
	var item order.Item
	err := row.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price, &item.Cancelled)
	return &item, err
}
