// Package voucher models promotional vouchers: discount codes with a
// remaining redemption quantity, an expiry date, and an active/used lifecycle.
package voucher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/fault"
)

// DiscountType selects which of the voucher's discount fields is meaningful.
type DiscountType string

const (
	// DiscountPercentage applies Percentage as a percent of the order subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountValue applies Discount as a flat monetary amount.
	DiscountValue DiscountType = "value"
)

// Voucher failure values.
var (
	ErrNotFound         = fault.New("voucher.not_found", "voucher not found")
	ErrExpired          = fault.New("voucher.expired", "this voucher is expired")
	ErrQuantityExceeded = fault.New("voucher.quantity_exceeded", "this voucher has already been used")
	ErrNotActive        = fault.New("voucher.not_active", "this voucher is no longer active")
	// ErrConflict is returned by the persistence layer when a concurrent
	// redemption won the version race.
	ErrConflict = fault.New("voucher.conflict", "voucher was modified concurrently")
)

// Voucher is a discount code with a limited number of redemptions.
//
// Percentage and Discount are both optional; DiscountType tells which one is
// meaningful. Version is the optimistic-concurrency token bumped by the
// persistence layer on every update.
type Voucher struct {
	ID           uuid.UUID
	Code         string
	Percentage   decimal.NullDecimal
	Discount     decimal.NullDecimal
	Quantity     int
	DiscountType DiscountType
	CreatedAt    time.Time
	UsedAt       *time.Time
	ExpiresAt    time.Time
	Active       bool
	Used         bool
	Version      int
}

// New creates a voucher with quantity redemptions remaining. The voucher
// starts active and unused.
func New(code string, percentage, discount decimal.NullDecimal, quantity int, typ DiscountType, expiresAt, now time.Time) *Voucher {
	return &Voucher{
		ID:           uuid.New(),
		Code:         code,
		Percentage:   percentage,
		Discount:     discount,
		Quantity:     quantity,
		DiscountType: typ,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
		Active:       true,
		Used:         false,
	}
}

// Redeem consumes one redemption. When the remaining quantity drops to zero
// the voucher transitions to its terminal used state. Callers must serialize
// concurrent redemptions externally; the postgres repository does so with a
// version check.
func (v *Voucher) Redeem(now time.Time) {
	v.Quantity--
	if v.Quantity >= 1 {
		return
	}
	v.MarkUsed(now)
}

// MarkUsed forces the terminal used state: no redemptions remain and the
// voucher can never be applied again.
func (v *Voucher) MarkUsed(now time.Time) {
	v.Quantity = 0
	v.Active = false
	v.Used = true
	usedAt := now
	v.UsedAt = &usedAt
}

// DiscountAmount computes the monetary discount this voucher grants on the
// given subtotal, per its discount type. Unset discount fields yield zero.
func (v *Voucher) DiscountAmount(subtotal decimal.Decimal) decimal.Decimal {
	switch v.DiscountType {
	case DiscountPercentage:
		if !v.Percentage.Valid {
			return decimal.Zero
		}
		return subtotal.Mul(v.Percentage.Decimal).Div(hundred).Round(2)
	case DiscountValue:
		if !v.Discount.Valid {
			return decimal.Zero
		}
		return v.Discount.Decimal
	default:
		return decimal.Zero
	}
}

var hundred = decimal.NewFromInt(100)

// Repository provides lookup and mutation of stored vouchers.
type Repository interface {
	// GetByCode returns the voucher with the given code, or ErrNotFound.
	GetByCode(ctx context.Context, code string) (*Voucher, error)
	// Update persists the voucher state. Implementations must guard against
	// concurrent updates and return ErrConflict when the stored version no
	// longer matches.
	Update(ctx context.Context, v *Voucher) error
}
