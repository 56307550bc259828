package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/google/uuid"
)

func TestCheckoutHandler_Config(t *testing.T) {
	cfg := services.CheckoutConfig{PublishableKey: "pk_test_123", Currency: "USD", FreeShippingThreshold: 50}
	h := NewCheckoutHandler(&stubCheckout{config: cfg}, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.Config(rr, httptest.NewRequest(http.MethodGet, "/api/checkout/config", nil))

	var resp services.CheckoutConfig
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp != cfg {
		t.Fatalf("unexpected config: %+v", resp)
	}
}

func TestCheckoutHandler_Quote(t *testing.T) {
	quote := &models.Quote{Subtotal: 60, Total: 54, Currency: "USD", Messages: []string{"Minimum order is $100.00"}}
	h := NewCheckoutHandler(&stubCheckout{quote: quote}, nil, newTestLogger())

	body := bytes.NewBufferString(`{"items":[{"product_id":"p1","quantity":2,"price":30}],"promo_code":"SAVE10"}`)
	rr := httptest.NewRecorder()
	h.Quote(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/quote", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.Quote
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 54 || len(resp.Messages) != 1 {
		t.Fatalf("unexpected quote: %+v", resp)
	}
}

func TestCheckoutHandler_Quote_EmptyCart(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{err: apperror.Validation("cart is empty", nil)}, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.Quote(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/quote", bytes.NewBufferString(`{"items":[]}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCheckoutHandler_PlaceOrder_RequiresUser(t *testing.T) {
	stub := &stubCheckout{}
	h := NewCheckoutHandler(stub, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.PlaceOrder(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/orders", bytes.NewBufferString(`{"items":[{"product_id":"p1","quantity":1,"price":10}]}`)))

	if rr.Code != http.StatusBadRequest || stub.calls != 0 {
		t.Fatalf("expected 400 without service call, got %d calls=%d", rr.Code, stub.calls)
	}
}

func TestCheckoutHandler_PlaceOrder_PublishesEvents(t *testing.T) {
	couponID := uuid.New()
	code := "WELCOME"
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         "u1",
		Total:          20,
		DiscountAmount: 5,
		DiscountCode:   &code,
		Discount:       &models.AppliedDiscount{Source: "coupon", Code: code, CouponID: &couponID, SubtotalOff: 5},
		GiftCardAmount: 10,
		Status:         models.OrderStatusPending,
	}
	producer := &recordingProducer{}
	h := NewCheckoutHandler(&stubCheckout{order: order}, producer, newTestLogger())

	body := bytes.NewBufferString(`{"user_id":"u1","items":[{"product_id":"p1","quantity":1,"price":35}],"coupon_id":"` + couponID.String() + `","gift_card_code":"gift12345"}`)
	rr := httptest.NewRecorder()
	h.PlaceOrder(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/orders", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	want := []models.EventType{models.EventTypeOrderPlaced, models.EventTypeCouponRedeemed, models.EventTypeGiftCardRedeemed}
	got := producer.types()
	if len(got) != len(want) {
		t.Fatalf("unexpected events: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCheckoutHandler_PlaceOrder_OversellConflict(t *testing.T) {
	producer := &recordingProducer{}
	h := NewCheckoutHandler(&stubCheckout{err: apperror.Conflict("insufficient stock for product p1", nil)}, producer, newTestLogger())

	rr := httptest.NewRecorder()
	h.PlaceOrder(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/orders", bytes.NewBufferString(`{"user_id":"u1","items":[{"product_id":"p1","quantity":9,"price":10}]}`)))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if len(producer.types()) != 0 {
		t.Fatalf("no events expected for rejected order")
	}
}

func TestCheckoutHandler_PlaceOrder_PaymentsUnavailable(t *testing.T) {
	h := NewCheckoutHandler(&stubCheckout{err: apperror.Unavailable("payment provider unavailable", nil)}, nil, newTestLogger())

	rr := httptest.NewRecorder()
	h.PlaceOrder(rr, httptest.NewRequest(http.MethodPost, "/api/checkout/orders", bytes.NewBufferString(`{"user_id":"u1","items":[{"product_id":"p1","quantity":1,"price":10}]}`)))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
