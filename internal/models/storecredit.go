package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditSource описывает происхождение начисления store credit.
type CreditSource string

const (
	CreditSourceReturn     CreditSource = "return"
	CreditSourceRefund     CreditSource = "refund"
	CreditSourcePromotion  CreditSource = "promotion"
	CreditSourceAdjustment CreditSource = "adjustment"
	CreditSourceOrder      CreditSource = "order"
)

// Valid сообщает, можно ли начислять кредит с таким источником.
// CreditSourceOrder используется только для списаний.
func (s CreditSource) Valid() bool {
	switch s {
	case CreditSourceReturn, CreditSourceRefund, CreditSourcePromotion, CreditSourceAdjustment:
		return true
	}
	return false
}

// StoreCreditEntry представляет одну запись журнала store credit.
// Положительная сумма — начисление, отрицательная — списание.
type StoreCreditEntry struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Amount    float64      `json:"amount" db:"amount"`
	Source    CreditSource `json:"source" db:"source"`
	Note      *string      `json:"note,omitempty" db:"note"`
	OrderID   *uuid.UUID   `json:"order_id,omitempty" db:"order_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// StoreCredit представляет текущий баланс пользователя.
type StoreCredit struct {
	UserID    string             `json:"user_id"`
	Balance   float64            `json:"balance"`
	Entries   []StoreCreditEntry `json:"entries,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SpendStoreCreditRequest описывает ручное списание кредита.
type SpendStoreCreditRequest struct {
	UserID  string     `json:"user_id"`
	Amount  float64    `json:"amount"`
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

// IssueStoreCreditRequest описывает начисление кредита.
type IssueStoreCreditRequest struct {
	UserID string       `json:"user_id"`
	Amount float64      `json:"amount"`
	Source CreditSource `json:"source"`
	Note   *string      `json:"note,omitempty"`
}
