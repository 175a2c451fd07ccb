package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/salescore/internal/domain/fault"
	"github.com/xenking/salescore/internal/domain/order"
	"github.com/xenking/salescore/internal/domain/voucher"
)

// CreateOrder handles POST /api/v1/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateOrder(r.Body)
	if err != nil {
		writeFaults(w, http.StatusBadRequest, fault.List{fault.New("request.malformed", "malformed request body")})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	items := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	id, err := h.orders.CreateOrder(r.Context(), order.CreateOrderInput{
		CustomerID:  uuid.MustParse(req.CustomerID),
		BranchID:    uuid.MustParse(req.BranchID),
		Amount:      req.Amount,
		Items:       items,
		VoucherCode: req.VoucherCode,
		HasVoucher:  req.HasVoucher,
		Discount:    req.Discount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOrderID(w, http.StatusCreated, id)
}

// GetOrder handles GET /api/v1/orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOrder(w, o)
}

// UpdateOrder handles PUT /api/v1/orders/{orderID}.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	req, err := decodeUpdateOrder(r.Body)
	if err != nil {
		writeFaults(w, http.StatusBadRequest, fault.List{fault.New("request.malformed", "malformed request body")})
		return
	}
	// A body-level order id, when present, must match the route.
	if req.OrderID != "" && req.OrderID != id.String() {
		writeFaults(w, http.StatusForbidden, fault.List{fault.New("order.id_mismatch", "order id does not match the request path")})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	items := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	updated, err := h.orders.UpdateOrder(r.Context(), id, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOrderID(w, http.StatusOK, updated)
}

// DeleteOrder handles DELETE /api/v1/orders/{orderID}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil || id == uuid.Nil {
		writeFieldErrors(w, []fieldError{{Field: "orderId", Message: "invalid order id"}})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain failures to HTTP statuses: not-found → 404,
// concurrent voucher conflict → 409, every other business-rule failure →
// 422. Unexpected errors are logged and surface as 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var list fault.List
	if !errors.As(err, &list) {
		var single fault.Error
		if errors.As(err, &single) {
			list = fault.List{single}
		}
	}

	if list == nil {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := http.StatusUnprocessableEntity
	switch {
	case list.Has(order.ErrNotFound.Code), list.Has(voucher.ErrNotFound.Code):
		status = http.StatusNotFound
	case list.Has(voucher.ErrConflict.Code):
		status = http.StatusConflict
	}
	writeFaults(w, status, list)
}
