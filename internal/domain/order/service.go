package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/fault"
	"github.com/xenking/salescore/internal/domain/voucher"
)

// TxRunner commits a group of repository calls as one unit. fn runs inside
// the transaction; returning an error rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderInput holds the input for creating an order. Amount and
// Discount are the caller's own computation of the order totals; the service
// recomputes both and rejects the request when they disagree.
type CreateOrderInput struct {
	CustomerID  uuid.UUID
	BranchID    uuid.UUID
	Amount      decimal.Decimal
	Items       []ItemInput
	VoucherCode string
	HasVoucher  bool
	Discount    decimal.Decimal
}

// Service implements the order command handlers over the repository
// collaborators. Each call operates on its own in-memory aggregate copy;
// the only shared state is behind the repositories.
type Service struct {
	orders   Repository
	vouchers voucher.Repository
	tx       TxRunner
	now      func() time.Time
}

// NewService creates a Service with the required collaborators. now supplies
// order-creation timestamps and voucher eligibility instants; inject a fixed
// clock in tests.
func NewService(orders Repository, vouchers voucher.Repository, tx TxRunner, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:   orders,
		vouchers: vouchers,
		tx:       tx,
		now:      now,
	}
}

// CreateOrder builds the aggregate from the input, applies an optional
// voucher, validates the caller-declared totals against the recomputed ones,
// and persists order and voucher atomically. It returns the new order ID.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (uuid.UUID, error) {
	o := New(in.CustomerID, in.BranchID, s.now().UTC())
	for _, item := range in.Items {
		if err := o.AddItem(item.ProductID, item.Quantity, item.Price); err != nil {
			return uuid.Nil, err
		}
	}

	v, err := s.applyVoucher(ctx, in, o)
	if err != nil {
		return uuid.Nil, err
	}

	if err := validateDeclaredAmounts(in, o); err != nil {
		return uuid.Nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if v != nil {
			if err := s.vouchers.Update(ctx, v); err != nil {
				return errors.Wrap(err, "update voucher")
			}
		}
		if err := s.orders.Add(ctx, o); err != nil {
			return errors.Wrap(err, "add order")
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return o.ID, nil
}

// applyVoucher resolves and validates the requested voucher, associates it
// with the order and consumes one redemption. The mutated voucher is
// returned for persistence inside the command transaction.
func (s *Service) applyVoucher(ctx context.Context, in CreateOrderInput, o *Order) (*voucher.Voucher, error) {
	if !in.HasVoucher {
		return nil, nil
	}

	v, err := s.vouchers.GetByCode(ctx, in.VoucherCode)
	if err != nil {
		if errors.Is(err, voucher.ErrNotFound) {
			return nil, fault.List{voucher.ErrNotFound}
		}
		return nil, errors.Wrap(err, "get voucher")
	}

	if errs := voucher.Validate(v, s.now()); len(errs) > 0 {
		return nil, errs
	}

	o.AssociateVoucher(v)
	v.Redeem(s.now().UTC())
	return v, nil
}

// validateDeclaredAmounts guards against clients computing totals
// differently from the server: the recomputed total must equal the declared
// amount net of the declared discount, and the recomputed discount must
// equal the declared one.
func validateDeclaredAmounts(in CreateOrderInput, o *Order) error {
	if !o.TotalAmount.Equal(in.Amount.Sub(in.Discount)) {
		return fault.List{ErrTotalAmountMismatch}
	}
	if !o.Discount.Equal(in.Discount) {
		return fault.List{ErrSentAmountMismatch}
	}
	return nil
}

// UpdateOrder replaces the order's item set: lines absent from the new set
// are cancelled (kept, not deleted), lines present are added or updated,
// which revives previously cancelled lines for the same product.
func (s *Service) UpdateOrder(ctx context.Context, orderID uuid.UUID, items []ItemInput) (uuid.UUID, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}

	requested := make(map[uuid.UUID]ItemInput, len(items))
	for _, item := range items {
		requested[item.ProductID] = item
	}

	for _, existing := range o.Items {
		if _, ok := requested[existing.ProductID]; !ok {
			o.CancelItem(existing.ProductID)
		}
	}
	for _, item := range items {
		if err := o.AddItem(item.ProductID, item.Quantity, item.Price); err != nil {
			return uuid.Nil, err
		}
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.orders.Update(ctx, o)
	})
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "update order")
	}
	return o.ID, nil
}

// GetOrder loads the full aggregate by ID.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// DeleteOrder removes the order and its items. The load-first shape keeps
// NotFound reporting consistent with the other commands.
func (s *Service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.orders.Delete(ctx, o.ID)
	})
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	return nil
}
