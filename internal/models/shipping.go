package models

import "time"

// ShippingType описывает способ доставки.
type ShippingType string

const (
	ShippingStandard  ShippingType = "standard"
	ShippingExpress   ShippingType = "express"
	ShippingOvernight ShippingType = "overnight"
	ShippingPickup    ShippingType = "pickup"
)

// Habit возвращает привычку доставки, которой соответствует способ.
func (t ShippingType) Habit() ShippingHabit {
	switch t {
	case ShippingExpress, ShippingOvernight:
		return ShippingHabitExpress
	case ShippingPickup:
		return ShippingHabitPickup
	default:
		return ShippingHabitEconomy
	}
}

// ShippingOption представляет вариант доставки с ценой и сроками.
type ShippingOption struct {
	Type     ShippingType      `json:"type"`
	Label    string            `json:"label"`
	Price    float64           `json:"price"`
	MinDays  int               `json:"min_days"`
	MaxDays  int               `json:"max_days"`
	Cutoff   string            `json:"cutoff,omitempty"`
	Free     bool              `json:"free"`
	Estimate *DeliveryEstimate `json:"estimate,omitempty"`
}

// DeliveryEstimate — производное окно доставки, не сохраняется.
type DeliveryEstimate struct {
	MinDate time.Time `json:"min_date"`
	MaxDate time.Time `json:"max_date"`
	Display string    `json:"display"`
}
