package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CouponType описывает вид пользовательского купона.
type CouponType string

const (
	CouponTypePercent      CouponType = "percent"
	CouponTypeFixed        CouponType = "fixed"
	CouponTypeFreeShipping CouponType = "free_shipping"
)

// Valid сообщает, известен ли тип купона.
func (t CouponType) Valid() bool {
	switch t {
	case CouponTypePercent, CouponTypeFixed, CouponTypeFreeShipping:
		return true
	}
	return false
}

// ShippingHabit классифицирует предпочтения пользователя по доставке.
type ShippingHabit string

const (
	ShippingHabitEconomy ShippingHabit = "economy"
	ShippingHabitExpress ShippingHabit = "express"
	ShippingHabitPickup  ShippingHabit = "pickup"
)

// UserCoupon представляет купон, выданный конкретному пользователю.
type UserCoupon struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	UserID        string         `json:"user_id" db:"user_id"`
	Code          string         `json:"code" db:"code"`
	Type          CouponType     `json:"type" db:"type"`
	Value         float64        `json:"value" db:"value"`
	MinOrder      float64        `json:"min_order" db:"min_order"`
	MaxUses       int            `json:"max_uses" db:"max_uses"`
	UsedCount     int            `json:"used_count" db:"used_count"`
	ShippingHabit *ShippingHabit `json:"shipping_habit,omitempty" db:"shipping_habit"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// AssignCouponRequest описывает выдачу купона пользователю.
type AssignCouponRequest struct {
	UserID        string         `json:"user_id"`
	Code          string         `json:"code"`
	Type          CouponType     `json:"type"`
	Value         float64        `json:"value"`
	MinOrder      float64        `json:"min_order,omitempty"`
	MaxUses       int            `json:"max_uses,omitempty"`
	ShippingHabit *ShippingHabit `json:"shipping_habit,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// Validate проверяет параметры купона перед выдачей.
func (c *UserCoupon) Validate() error {
	if c.UserID == "" {
		return errors.New("user_id is required")
	}
	if c.Code == "" {
		return errors.New("code is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown coupon type %q", c.Type)
	}
	if c.Value < 0 {
		return errors.New("value must be non-negative")
	}
	if c.Type == CouponTypePercent && c.Value > 100 {
		return errors.New("percent value must be between 0 and 100")
	}
	if c.MaxUses < 1 {
		return errors.New("max_uses must be at least 1")
	}
	if c.UsedCount > c.MaxUses {
		return errors.New("used_count exceeds max_uses")
	}
	if c.ShippingHabit != nil {
		switch *c.ShippingHabit {
		case ShippingHabitEconomy, ShippingHabitExpress, ShippingHabitPickup:
		default:
			return fmt.Errorf("unknown shipping habit %q", *c.ShippingHabit)
		}
	}
	return nil
}
