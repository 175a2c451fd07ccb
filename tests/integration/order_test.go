//go:build integration

package integration

import (
	"math"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

const testAPIKey = "integration-test-key"

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func createOrder(t *testing.T, req createOrderRequest) string {
	t.Helper()

	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[orderIDResponse](t, resp)
	if _, err := uuid.Parse(created.OrderID); err != nil {
		t.Fatalf("order id is not a uuid: %q", created.OrderID)
	}
	return created.OrderID
}

func TestCreateOrder_NoAuth(t *testing.T) {
	req := createOrderRequest{
		CustomerID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		Amount:     10,
		Items:      []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 10}},
	}
	resp := doPost(t, "/api/v1/orders", req, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidKey(t *testing.T) {
	req := createOrderRequest{
		CustomerID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		Amount:     10,
		Items:      []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 10}},
	}
	resp := doPost(t, "/api/v1/orders", req, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	req := createOrderRequest{
		CustomerID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		Items:      []orderItemRequest{},
	}
	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Errors) != 1 || body.Errors[0].Field != "items" {
		t.Errorf("unexpected errors: %+v", body.Errors)
	}
}

func TestCreateOrder_ValidationBatch(t *testing.T) {
	req := createOrderRequest{
		CustomerID: "not-a-uuid",
		BranchID:   "also-not-a-uuid",
		Items:      []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 0, Price: 0}},
	}
	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %+v", len(body.Errors), body.Errors)
	}
}

func TestCreateOrder_TotalAmountMismatch(t *testing.T) {
	req := createOrderRequest{
		CustomerID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		Amount:     95,
		Items:      []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 2, Price: 50}},
	}
	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Errors) != 1 || body.Errors[0].Code != "order.total_amount_mismatch" {
		t.Errorf("unexpected errors: %+v", body.Errors)
	}
}

func TestCreateOrder_VoucherNotFound(t *testing.T) {
	req := createOrderRequest{
		CustomerID:  uuid.NewString(),
		BranchID:    uuid.NewString(),
		Amount:      100,
		HasVoucher:  true,
		VoucherCode: "NOSUCHCODE",
		Items:       []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 100}},
	}
	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestOrderLifecycle(t *testing.T) {
	customerID := uuid.NewString()
	keep := uuid.NewString()
	drop := uuid.NewString()

	orderID := createOrder(t, createOrderRequest{
		CustomerID: customerID,
		BranchID:   uuid.NewString(),
		Amount:     200,
		Items: []orderItemRequest{
			{ProductID: keep, Quantity: 1, Price: 100},
			{ProductID: drop, Quantity: 2, Price: 50},
		},
	})

	// Read it back.
	resp := doGet(t, "/api/v1/orders/"+orderID, testAPIKey)
	got := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if got.OrderID != orderID {
		t.Errorf("order id: got %s, want %s", got.OrderID, orderID)
	}
	if got.CustomerID != customerID {
		t.Errorf("customer id: got %s, want %s", got.CustomerID, customerID)
	}
	if !almostEqual(got.TotalAmount, 200) {
		t.Errorf("total: got %v, want 200", got.TotalAmount)
	}
	if got.Status != "pending" {
		t.Errorf("status: got %q, want pending", got.Status)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(got.Items))
	}

	// Replace the item set: omit one product, bump the other.
	resp = doPut(t, "/api/v1/orders/"+orderID, updateOrderRequest{
		Items: []orderItemRequest{{ProductID: keep, Quantity: 3, Price: 100}},
	}, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/v1/orders/"+orderID, testAPIKey)
	got = decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if !almostEqual(got.TotalAmount, 300) {
		t.Errorf("total after update: got %v, want 300", got.TotalAmount)
	}
	if !almostEqual(got.CancelledItemsAmount, 100) {
		t.Errorf("cancelled amount: got %v, want 100", got.CancelledItemsAmount)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items after update: got %d, want 2 (cancelled lines are kept)", len(got.Items))
	}
	for _, item := range got.Items {
		wantCancelled := item.ProductID == drop
		if item.Cancelled != wantCancelled {
			t.Errorf("item %s cancelled: got %v, want %v", item.ProductID, item.Cancelled, wantCancelled)
		}
	}

	// Delete and confirm it is gone.
	resp = doDelete(t, "/api/v1/orders/"+orderID, testAPIKey)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/v1/orders/"+orderID, testAPIKey)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateOrder_WithPercentageVoucher(t *testing.T) {
	// TENOFF (seeded): 10% off.
	orderID := createOrder(t, createOrderRequest{
		CustomerID:  uuid.NewString(),
		BranchID:    uuid.NewString(),
		Amount:      200,
		Discount:    20,
		HasVoucher:  true,
		VoucherCode: "TENOFF",
		Items:       []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 2, Price: 100}},
	})

	resp := doGet(t, "/api/v1/orders/"+orderID, testAPIKey)
	got := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if !almostEqual(got.TotalAmount, 180) {
		t.Errorf("total: got %v, want 180", got.TotalAmount)
	}
	if !almostEqual(got.Discount, 20) {
		t.Errorf("discount: got %v, want 20", got.Discount)
	}
}

func TestCreateOrder_WithValueVoucher(t *testing.T) {
	// FIVER (seeded): flat 5 off.
	orderID := createOrder(t, createOrderRequest{
		CustomerID:  uuid.NewString(),
		BranchID:    uuid.NewString(),
		Amount:      50,
		Discount:    5,
		HasVoucher:  true,
		VoucherCode: "FIVER",
		Items:       []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 50}},
	})

	resp := doGet(t, "/api/v1/orders/"+orderID, testAPIKey)
	got := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	if !almostEqual(got.TotalAmount, 45) {
		t.Errorf("total: got %v, want 45", got.TotalAmount)
	}
}

func TestCreateOrder_DeclaredDiscountMismatch(t *testing.T) {
	req := createOrderRequest{
		CustomerID:  uuid.NewString(),
		BranchID:    uuid.NewString(),
		Amount:      210,
		Discount:    30,
		HasVoucher:  true,
		VoucherCode: "TENOFF",
		Items:       []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 2, Price: 100}},
	}
	resp := doPost(t, "/api/v1/orders", req, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Errors) != 1 || body.Errors[0].Code != "order.sent_amount_mismatch" {
		t.Errorf("unexpected errors: %+v", body.Errors)
	}
}

func TestUpdateOrder_BodyIDMismatch(t *testing.T) {
	orderID := createOrder(t, createOrderRequest{
		CustomerID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		Amount:     10,
		Items:      []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 10}},
	})

	resp := doPut(t, "/api/v1/orders/"+orderID, updateOrderRequest{
		OrderID: uuid.NewString(),
		Items:   []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1, Price: 10}},
	}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestDeleteOrder_NotFound(t *testing.T) {
	resp := doDelete(t, "/api/v1/orders/"+uuid.NewString(), testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
