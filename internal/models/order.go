package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order представляет оформленный заказ
type Order struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	UserID            string           `json:"user_id" db:"user_id"`
	Items             []OrderItem      `json:"items"`
	Subtotal          float64          `json:"subtotal" db:"subtotal"`
	ShippingType      ShippingType     `json:"shipping_type" db:"shipping_type"`
	ShippingCost      float64          `json:"shipping_cost" db:"shipping_cost"`
	DiscountAmount    float64          `json:"discount_amount" db:"discount_amount"`
	DiscountCode      *string          `json:"discount_code,omitempty" db:"discount_code"`
	Discount          *AppliedDiscount `json:"discount,omitempty" db:"-"`
	GiftCardAmount    float64          `json:"gift_card_amount" db:"gift_card_amount"`
	StoreCreditAmount float64          `json:"store_credit_amount" db:"store_credit_amount"`
	Total             float64          `json:"total" db:"total"`
	Currency          string           `json:"currency" db:"currency"`
	Status            OrderStatus      `json:"status" db:"status"`
	PaymentIntentID   *string          `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	PaymentSecret     string           `json:"payment_client_secret,omitempty" db:"-"`
	EstimatedDelivery *time.Time       `json:"estimated_delivery,omitempty" db:"estimated_delivery"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// OrderItem представляет товар в заказе
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
}

// CheckoutItem — позиция корзины в запросе оформления
type CheckoutItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CheckoutRequest описывает корзину и выбранные способы оплаты/скидки
type CheckoutRequest struct {
	UserID         string         `json:"user_id"`
	Items          []CheckoutItem `json:"items"`
	ShippingType   ShippingType   `json:"shipping_type"`
	PromoCode      *string        `json:"promo_code,omitempty"`
	CouponID       *uuid.UUID     `json:"coupon_id,omitempty"`
	GiftCardCode   *string        `json:"gift_card_code,omitempty"`
	UseStoreCredit bool           `json:"use_store_credit,omitempty"`
}

// AppliedDiscount описывает выбранную скидку
type AppliedDiscount struct {
	Source      string     `json:"source"` // promo | coupon
	Code        string     `json:"code"`
	CouponID    *uuid.UUID `json:"coupon_id,omitempty"`
	SubtotalOff float64    `json:"subtotal_off"`
	ShippingOff float64    `json:"shipping_off"`
}

// Quote — расчёт итоговой суммы без побочных эффектов
type Quote struct {
	Subtotal          float64           `json:"subtotal"`
	Shipping          ShippingOption    `json:"shipping"`
	ShippingCost      float64           `json:"shipping_cost"`
	Discount          *AppliedDiscount  `json:"discount,omitempty"`
	DiscountAmount    float64           `json:"discount_amount"`
	GiftCardAmount    float64           `json:"gift_card_amount"`
	StoreCreditAmount float64           `json:"store_credit_amount"`
	Total             float64           `json:"total"`
	Currency          string            `json:"currency"`
	Estimate          *DeliveryEstimate `json:"estimate,omitempty"`
	Messages          []string          `json:"messages,omitempty"`
}
