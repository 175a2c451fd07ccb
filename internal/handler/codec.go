package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/fault"
	"github.com/xenking/salescore/internal/domain/order"
)

// Wire types. Fields mirror the JSON contract; UUID and decimal parsing is
// deferred to validation so a single malformed field does not abort the
// field-level error collection.

type createOrderRequest struct {
	CustomerID  string
	BranchID    string
	Amount      decimal.Decimal
	Items       []orderItemRequest
	VoucherCode string
	HasVoucher  bool
	Discount    decimal.Decimal
}

type updateOrderRequest struct {
	OrderID string
	Items   []orderItemRequest
}

type orderItemRequest struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

func decodeCreateOrder(r io.Reader) (req createOrderRequest, _ error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return req, errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customerId":
			req.CustomerID, err = d.Str()
		case "branchId":
			req.BranchID, err = d.Str()
		case "amount":
			req.Amount, err = decodeDecimal(d)
		case "items":
			req.Items, err = decodeItems(d)
		case "voucherCode":
			req.VoucherCode, err = d.Str()
		case "hasVoucher":
			req.HasVoucher, err = d.Bool()
		case "discount":
			req.Discount, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		return err
	})
	return req, err
}

func decodeUpdateOrder(r io.Reader) (req updateOrderRequest, _ error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return req, errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(data)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "orderId":
			req.OrderID, err = d.Str()
		case "items":
			req.Items, err = decodeItems(d)
		default:
			return d.Skip()
		}
		return err
	})
	return req, err
}

func decodeItems(d *jx.Decoder) ([]orderItemRequest, error) {
	var items []orderItemRequest
	err := d.Arr(func(d *jx.Decoder) error {
		var (
			item orderItemRequest
			err  error
		)
		err = d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "productId":
				item.ProductID, err = d.Str()
			case "quantity":
				item.Quantity, err = d.Int()
			case "price":
				item.Price, err = decodeDecimal(d)
			default:
				return d.Skip()
			}
			return err
		})
		items = append(items, item)
		return err
	})
	return items, err
}

// decodeDecimal reads a JSON number as an exact decimal, avoiding the float
// round-trip.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(n.String())
}

// --- Responses ---

func writeOrderID(w http.ResponseWriter, status int, id uuid.UUID) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(id.String())
	e.ObjEnd()
	writeJSON(w, status, e)
}

func writeOrder(w http.ResponseWriter, o *order.Order) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID.String())
	e.FieldStart("date")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.FieldStart("customerId")
	e.Str(o.CustomerID.String())
	e.FieldStart("branchId")
	e.Str(o.BranchID.String())
	e.FieldStart("totalAmount")
	encodeDecimal(e, o.TotalAmount)
	e.FieldStart("discount")
	encodeDecimal(e, o.Discount)
	e.FieldStart("cancelledItemsAmount")
	encodeDecimal(e, o.CancelledItemsAmount)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.ObjStart()
		e.FieldStart("orderItemId")
		e.Str(item.ID.String())
		e.FieldStart("productId")
		e.Str(item.ProductID.String())
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("price")
		encodeDecimal(e, item.Price)
		e.FieldStart("amount")
		encodeDecimal(e, item.Amount())
		e.FieldStart("cancelled")
		e.Bool(item.Cancelled)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

// encodeDecimal emits the exact decimal representation as a JSON number.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func writeFaults(w http.ResponseWriter, status int, list fault.List) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("errors")
	e.ArrStart()
	for _, f := range list {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(f.Code)
		e.FieldStart("message")
		e.Str(f.Message)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, status, e)
}

func writeFieldErrors(w http.ResponseWriter, errs []fieldError) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("errors")
	e.ArrStart()
	for _, fe := range errs {
		e.ObjStart()
		e.FieldStart("code")
		e.Str("validation")
		e.FieldStart("field")
		e.Str(fe.Field)
		e.FieldStart("message")
		e.Str(fe.Message)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusBadRequest, e)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
