package voucher

import (
	"time"

	"github.com/xenking/salescore/internal/domain/fault"
)

// The three eligibility predicates are independent on purpose: redemption
// reports every violated condition, not just the first.

// NotExpired reports whether the voucher is still within its validity window.
func NotExpired(v *Voucher, now time.Time) bool {
	return !v.ExpiresAt.Before(now)
}

// HasRemaining reports whether at least one redemption remains.
func HasRemaining(v *Voucher) bool {
	return v.Quantity > 0
}

// IsActive reports whether the voucher is active and not yet used up.
func IsActive(v *Voucher) bool {
	return v.Active && !v.Used
}

// CanRedeem reports whether all eligibility checks pass.
func CanRedeem(v *Voucher, now time.Time) bool {
	return NotExpired(v, now) && HasRemaining(v) && IsActive(v)
}

// Validate evaluates every eligibility predicate and collects all failures.
// A nil result means the voucher is redeemable.
func Validate(v *Voucher, now time.Time) fault.List {
	var errs fault.List
	if !NotExpired(v, now) {
		errs = append(errs, ErrExpired)
	}
	if !HasRemaining(v) {
		errs = append(errs, ErrQuantityExceeded)
	}
	if !IsActive(v) {
		errs = append(errs, ErrNotActive)
	}
	return errs
}
