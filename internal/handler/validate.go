package handler

import (
	"fmt"

	"github.com/google/uuid"
)

// fieldError is one request-shape violation. Validation collects at most one
// message per distinct field and reports the whole batch before any command
// handler runs.
type fieldError struct {
	Field   string
	Message string
}

type fieldErrors struct {
	errs []fieldError
	seen map[string]struct{}
}

func (v *fieldErrors) add(field, message string) {
	if v.seen == nil {
		v.seen = make(map[string]struct{})
	}
	if _, ok := v.seen[field]; ok {
		return
	}
	v.seen[field] = struct{}{}
	v.errs = append(v.errs, fieldError{Field: field, Message: message})
}

func (r createOrderRequest) validate() []fieldError {
	var v fieldErrors
	if !isUUID(r.CustomerID) {
		v.add("customerId", "invalid customer id")
	}
	if !isUUID(r.BranchID) {
		v.add("branchId", "invalid branch id")
	}
	if r.HasVoucher && r.VoucherCode == "" {
		v.add("voucherCode", "voucher code is required when hasVoucher is set")
	}
	validateItems(&v, r.Items)
	return v.errs
}

func (r updateOrderRequest) validate() []fieldError {
	var v fieldErrors
	validateItems(&v, r.Items)
	return v.errs
}

func validateItems(v *fieldErrors, items []orderItemRequest) {
	if len(items) == 0 {
		v.add("items", "the order needs to have at least 1 item")
		return
	}
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if !isUUID(item.ProductID) {
			v.add(prefix+"productId", "invalid product id")
		}
		if item.Quantity <= 0 {
			v.add(prefix+"quantity", "the quantity of each item must be greater than zero")
		}
		if !item.Price.IsPositive() {
			v.add(prefix+"price", "the price of each item must be greater than zero")
		}
	}
}

func isUUID(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id != uuid.Nil
}
