package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип доменного события
type EventType string

const (
	EventTypePromoApplied      EventType = "promo.applied"
	EventTypeCouponRedeemed    EventType = "coupon.redeemed"
	EventTypeGiftCardIssued    EventType = "giftcard.issued"
	EventTypeGiftCardRedeemed  EventType = "giftcard.redeemed"
	EventTypeStoreCreditIssued EventType = "store_credit.issued"
	EventTypeOrderPlaced       EventType = "order.placed"
	EventTypeBannerUpdated     EventType = "banner.updated"
)

// Event представляет событие, публикуемое в Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Key       string          `json:"key,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// DiscountRedeemedData описывает использование промокода или купона
type DiscountRedeemedData struct {
	Code     string     `json:"code"`
	CouponID *uuid.UUID `json:"coupon_id,omitempty"`
	UserID   string     `json:"user_id,omitempty"`
	OrderID  *uuid.UUID `json:"order_id,omitempty"`
	Amount   float64    `json:"amount"`
}

// GiftCardEventData описывает выпуск или списание подарочной карты.
// Balance не заполняется, когда карта списана при оформлении заказа.
type GiftCardEventData struct {
	Code    string     `json:"code"`
	UserID  string     `json:"user_id,omitempty"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
	Amount  float64    `json:"amount"`
	Balance *float64   `json:"balance,omitempty"`
}

// StoreCreditEventData описывает начисление кредита
type StoreCreditEventData struct {
	UserID string       `json:"user_id"`
	Amount float64      `json:"amount"`
	Source CreditSource `json:"source"`
}

// OrderPlacedData описывает оформленный заказ
type OrderPlacedData struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  string    `json:"user_id"`
	Total   float64   `json:"total"`
	Items   int       `json:"items"`
}
