package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/salescore/internal/domain/voucher"
)

const (
	voucherColumns = `id, code, percentage, discount, quantity, discount_type,
		created_at, used_at, expires_at, active, used, version`

	getVoucherByCodeSQL = `SELECT ` + voucherColumns + `
		FROM vouchers WHERE UPPER(code) = UPPER($1)`

	getVoucherByIDSQL = `SELECT ` + voucherColumns + `
		FROM vouchers WHERE id = $1`

	updateVoucherSQL = `UPDATE vouchers SET quantity = $2, used_at = $3, active = $4, used = $5,
		version = version + 1
		WHERE id = $1 AND version = $6`

	insertVoucherSQL = `INSERT INTO vouchers (id, code, percentage, discount, quantity, discount_type,
		created_at, used_at, expires_at, active, used, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0)`
)

var _ voucher.Repository = (*VoucherRepository)(nil)

// VoucherRepository implements voucher.Repository backed by PostgreSQL.
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// NewVoucherRepository returns a VoucherRepository that uses the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// GetByCode looks up a voucher by its code (case-insensitive).
// Returns voucher.ErrNotFound when no such voucher exists.
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getVoucherByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find voucher by code %q", code)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find voucher by code %q", code)
	}
	return v, nil
}

// Update persists the voucher's redemption state with an optimistic version
// check: when a concurrent update bumped the version first, no row matches
// and voucher.ErrConflict is returned.
func (r *VoucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, updateVoucherSQL,
		v.ID, v.Quantity, v.UsedAt, v.Active, v.Used, v.Version,
	)
	if err != nil {
		return errors.Wrapf(err, "update voucher %q", v.Code)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrConflict
	}
	v.Version++
	return nil
}

// Insert stores a freshly created voucher. Used by the seed and ingest tools.
func (r *VoucherRepository) Insert(ctx context.Context, v *voucher.Voucher) error {
	_, err := conn(ctx, r.pool).Exec(ctx, insertVoucherSQL,
		v.ID, v.Code, v.Percentage, v.Discount, v.Quantity, string(v.DiscountType),
		v.CreatedAt, v.UsedAt, v.ExpiresAt, v.Active, v.Used,
	)
	if err != nil {
		return errors.Wrapf(err, "insert voucher %q", v.Code)
	}
	return nil
}

// getByID loads a voucher by primary key; absence yields (nil, nil) so the
// order loader can tolerate dangling references.
func (r *VoucherRepository) getByID(ctx context.Context, id uuid.UUID) (*voucher.Voucher, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getVoucherByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "find voucher %s", id)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "find voucher %s", id)
	}
	return v, nil
}

func scanVoucher(row pgx.CollectableRow) (*voucher.Voucher, error) {
	var (
		v            voucher.Voucher
		discountType string
	)
	err := row.Scan(
		&v.ID, &v.Code, &v.Percentage, &v.Discount, &v.Quantity, &discountType,
		&v.CreatedAt, &v.UsedAt, &v.ExpiresAt, &v.Active, &v.Used, &v.Version,
	)
	v.DiscountType = voucher.DiscountType(discountType)
	return &v, err
}
