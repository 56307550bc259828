package models

import (
	"errors"
	"time"
)

// PromoCode представляет общий промокод магазина с ограничениями на заказ.
type PromoCode struct {
	Code            string     `json:"code" db:"code"`
	DiscountPercent float64    `json:"discount_percent,omitempty" db:"discount_percent"`
	DiscountFixed   float64    `json:"discount_fixed,omitempty" db:"discount_fixed"`
	MinOrder        float64    `json:"min_order" db:"min_order"`
	ValidFrom       *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	MaxUses         int        `json:"max_uses" db:"max_uses"` // 0 = безлимит
	UsedCount       int        `json:"used_count" db:"used_count"`
	Active          bool       `json:"active" db:"active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreatePromoCodeRequest описывает запрос на создание промокода.
type CreatePromoCodeRequest struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discount_percent,omitempty"`
	DiscountFixed   float64    `json:"discount_fixed,omitempty"`
	MinOrder        float64    `json:"min_order,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	MaxUses         int        `json:"max_uses,omitempty"`
	Active          bool       `json:"active"`
}

// UpdatePromoCodeRequest описывает запрос на обновление промокода.
type UpdatePromoCodeRequest struct {
	DiscountPercent float64    `json:"discount_percent,omitempty"`
	DiscountFixed   float64    `json:"discount_fixed,omitempty"`
	MinOrder        float64    `json:"min_order,omitempty"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	MaxUses         int        `json:"max_uses,omitempty"`
	Active          bool       `json:"active"`
}

// ValidatePromoRequest запрашивает проверку кода для текущей корзины.
type ValidatePromoRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
}

// Validate проверяет инварианты промокода перед сохранением.
func (p *PromoCode) Validate() error {
	if p.Code == "" {
		return errors.New("code is required")
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return errors.New("discount_percent must be between 0 and 100")
	}
	if p.DiscountFixed < 0 {
		return errors.New("discount_fixed must be non-negative")
	}
	if p.DiscountPercent == 0 && p.DiscountFixed == 0 {
		return errors.New("either discount_percent or discount_fixed must be set")
	}
	if p.MinOrder < 0 {
		return errors.New("min_order must be non-negative")
	}
	if p.MaxUses < 0 {
		return errors.New("max_uses must be non-negative")
	}
	if p.ValidFrom != nil && p.ValidUntil != nil && p.ValidFrom.After(*p.ValidUntil) {
		return errors.New("valid_from must not be after valid_until")
	}
	return nil
}

// DiscountCheck — результат проверки кода скидки для корзины.
type DiscountCheck struct {
	Code        string  `json:"code"`
	Valid       bool    `json:"valid"`
	Reason      string  `json:"reason,omitempty"`
	SubtotalOff float64 `json:"subtotal_off"`
	ShippingOff float64 `json:"shipping_off"`
	Saving      float64 `json:"saving"`
	Message     string  `json:"message,omitempty"`
}
