package models

import (
	"time"

	"github.com/google/uuid"
)

// GiftCard представляет подарочную карту с остатком.
type GiftCard struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Code           string     `json:"code" db:"code"`
	InitialBalance float64    `json:"initial_balance" db:"initial_balance"`
	Balance        float64    `json:"balance" db:"balance"`
	Currency       string     `json:"currency" db:"currency"`
	OwnerUserID    *string    `json:"owner_user_id,omitempty" db:"owner_user_id"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Expired сообщает, истёк ли срок действия карты на момент now.
func (g *GiftCard) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && !now.Before(*g.ExpiresAt)
}

// IssueGiftCardRequest описывает выпуск подарочной карты.
type IssueGiftCardRequest struct {
	Code      string     `json:"code"`
	Amount    float64    `json:"amount"`
	Currency  string     `json:"currency,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RedeemGiftCardRequest описывает списание с подарочной карты.
type RedeemGiftCardRequest struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

// ValidateGiftCardRequest проверяет код и сумму до выпуска карты.
type ValidateGiftCardRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}
