// Package order contains the order aggregate and its command handlers.
//
// An Order owns its line items exclusively: items are created, updated and
// cancelled only through the aggregate, and every mutation re-derives the
// order totals. Derived amounts are never accepted from callers.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/fault"
	"github.com/xenking/salescore/internal/domain/voucher"
)

// Status is the order lifecycle state. Pending is the only state produced by
// the operations modeled here.
type Status string

// StatusPending is set at creation.
const StatusPending Status = "pending"

// Order failure values.
var (
	ErrNotFound            = fault.New("order.not_found", "order not found")
	ErrInvalidQuantity     = fault.New("order.invalid_quantity", "quantity must be greater than zero")
	ErrInvalidPrice        = fault.New("order.invalid_price", "price cannot be negative")
	ErrTotalAmountMismatch = fault.New("order.total_amount_mismatch", "the order total amount is different from the total amount of individual items")
	ErrSentAmountMismatch  = fault.New("order.sent_amount_mismatch", "the amount sent is different from the order amount")
)

// Item is a single order line. It is owned by its Order and has no
// independent lookup; cancelled lines are kept, never deleted.
type Item struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Cancelled bool
}

// NewItem creates a validated line item.
func NewItem(productID uuid.UUID, quantity int, price decimal.Decimal) (*Item, error) {
	if err := validateLine(quantity, price); err != nil {
		return nil, err
	}
	return &Item{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// Update replaces quantity and price and revives a cancelled line.
func (i *Item) Update(quantity int, price decimal.Decimal) error {
	if err := validateLine(quantity, price); err != nil {
		return err
	}
	i.Quantity = quantity
	i.Price = price
	i.Cancelled = false
	return nil
}

// Cancel marks the line cancelled. Cancelling twice is a no-op.
func (i *Item) Cancel() {
	i.Cancelled = true
}

// Amount returns quantity × unit price, regardless of cancellation state.
func (i *Item) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func validateLine(quantity int, price decimal.Decimal) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Order is the aggregate root: it owns its items and the total/discount
// derivation. TotalAmount, Discount and CancelledItemsAmount are recomputed
// by Recalculate and must not be set directly.
type Order struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	BranchID             uuid.UUID
	VoucherID            uuid.NullUUID
	HasVoucher           bool
	Discount             decimal.Decimal
	TotalAmount          decimal.Decimal
	CancelledItemsAmount decimal.Decimal
	CreatedAt            time.Time
	Status               Status
	Items                []*Item

	// attached voucher, set by AssociateVoucher or the persistence layer.
	voucher *voucher.Voucher
}

// New creates an empty pending order. Discounts only ever come from an
// associated voucher, so a fresh order carries none.
func New(customerID, branchID uuid.UUID, now time.Time) *Order {
	return &Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		BranchID:   branchID,
		Discount:   decimal.Zero,
		CreatedAt:  now,
		Status:     StatusPending,
	}
}

// Restore rebuilds an aggregate from persisted state without re-running
// business rules. v may be nil when the order has no voucher.
func Restore(
	id, customerID, branchID uuid.UUID,
	voucherID uuid.NullUUID,
	hasVoucher bool,
	discount, totalAmount, cancelledAmount decimal.Decimal,
	createdAt time.Time,
	status Status,
	items []*Item,
	v *voucher.Voucher,
) *Order {
	return &Order{
		ID:                   id,
		CustomerID:           customerID,
		BranchID:             branchID,
		VoucherID:            voucherID,
		HasVoucher:           hasVoucher,
		Discount:             discount,
		TotalAmount:          totalAmount,
		CancelledItemsAmount: cancelledAmount,
		CreatedAt:            createdAt,
		Status:               status,
		Items:                items,
		voucher:              v,
	}
}

// AddItem appends a new line for the product, or updates the existing line
// in place (reviving it when cancelled). Totals are recalculated afterward.
func (o *Order) AddItem(productID uuid.UUID, quantity int, price decimal.Decimal) error {
	if existing := o.findItem(productID); existing != nil {
		if err := existing.Update(quantity, price); err != nil {
			return err
		}
		o.Recalculate()
		return nil
	}

	item, err := NewItem(productID, quantity, price)
	if err != nil {
		return err
	}
	o.Items = append(o.Items, item)
	o.Recalculate()
	return nil
}

// CancelItem cancels the line for the product. Unknown products are a no-op.
func (o *Order) CancelItem(productID uuid.UUID) {
	if item := o.findItem(productID); item != nil {
		item.Cancel()
	}
	o.Recalculate()
}

// AssociateVoucher attaches a voucher to the order and re-derives the
// discount from it. Re-association is not supported: each order is given a
// voucher at most once, during creation.
func (o *Order) AssociateVoucher(v *voucher.Voucher) {
	o.HasVoucher = true
	o.VoucherID = uuid.NullUUID{UUID: v.ID, Valid: true}
	o.voucher = v
	o.Recalculate()
}

// Voucher returns the attached voucher, or nil.
func (o *Order) Voucher() *voucher.Voucher {
	return o.voucher
}

// Recalculate derives TotalAmount, CancelledItemsAmount and Discount from
// the current item and voucher state. It is pure with respect to its inputs:
// calling it again without intervening mutation yields identical amounts.
func (o *Order) Recalculate() {
	active := decimal.Zero
	cancelled := decimal.Zero
	for _, item := range o.Items {
		if item.Cancelled {
			cancelled = cancelled.Add(item.Amount())
			continue
		}
		active = active.Add(item.Amount())
	}

	discount := decimal.Zero
	switch {
	case !o.HasVoucher:
		// no voucher, no reduction
	case o.voucher != nil:
		discount = o.voucher.DiscountAmount(active)
	default:
		// voucher flagged but not loaded: keep the stored discount
		discount = o.Discount
	}

	total := active.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o.TotalAmount = total.Round(2)
	o.CancelledItemsAmount = cancelled.Round(2)
	o.Discount = discount.Round(2)
}

func (o *Order) findItem(productID uuid.UUID) *Item {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// Repository defines persistence operations for orders. Implementations load
// and store the full aggregate, items included.
type Repository interface {
	// GetByID returns the order with its items, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Add(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
