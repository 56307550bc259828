package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/google/uuid"
)

const defaultHistoryLimit = 20

// StoreCreditService начисляет и списывает store credit.
type StoreCreditService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewStoreCreditService создаёт сервис store credit.
func NewStoreCreditService(st store.Store, log *logger.Logger) *StoreCreditService {
	return &StoreCreditService{store: st, log: log, now: time.Now}
}

// Issue начисляет кредит пользователю.
func (s *StoreCreditService) Issue(ctx context.Context, req *models.IssueStoreCreditRequest) (*models.StoreCredit, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperror.Validation("user_id is required", nil)
	}
	if !positiveAmount(req.Amount) {
		return nil, apperror.Validation("amount must be positive", nil)
	}
	if !req.Source.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown credit source %q", req.Source), nil)
	}

	now := s.now()
	entry := &models.StoreCreditEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    round2(req.Amount),
		Source:    req.Source,
		Note:      req.Note,
		CreatedAt: now,
	}
	balance, err := s.store.AddCredit(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"user_id": userID,
		"amount":  entry.Amount,
		"source":  entry.Source,
	}).Info("Store credit issued")
	return &models.StoreCredit{UserID: userID, Balance: balance, UpdatedAt: now}, nil
}

// Balance возвращает баланс и последние операции пользователя.
func (s *StoreCreditService) Balance(ctx context.Context, userID string) (*models.StoreCredit, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.BadRequest("userId is required", nil)
	}
	balance, err := s.store.GetCreditBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.History(ctx, userID, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	credit := &models.StoreCredit{UserID: userID, Balance: balance, Entries: entries, UpdatedAt: s.now()}
	if len(entries) > 0 {
		credit.UpdatedAt = entries[0].CreatedAt
	}
	return credit, nil
}

// History возвращает журнал операций, новые первыми.
func (s *StoreCreditService) History(ctx context.Context, userID string, limit int) ([]models.StoreCreditEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.ListCreditEntries(ctx, userID, limit)
}

// Spend списывает кредит в оплату заказа.
func (s *StoreCreditService) Spend(ctx context.Context, userID string, amount float64, orderID *uuid.UUID) (float64, error) {
	var balance float64
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		balance, err = s.spend(ctx, tx, strings.TrimSpace(userID), amount, orderID)
		return err
	})
	return balance, err
}

func (s *StoreCreditService) spend(ctx context.Context, tx store.Store, userID string, amount float64, orderID *uuid.UUID) (float64, error) {
	if userID == "" {
		return 0, apperror.Validation("user_id is required", nil)
	}
	if !positiveAmount(amount) {
		return 0, apperror.Validation("amount must be positive", nil)
	}
	entry := &models.StoreCreditEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    -round2(amount),
		Source:    models.CreditSourceOrder,
		OrderID:   orderID,
		CreatedAt: s.now(),
	}
	balance, err := tx.SpendCredit(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(map[string]interface{}{
		"user_id": userID,
		"amount":  amount,
		"balance": balance,
	}).Info("Store credit spent")
	return balance, nil
}

func positiveAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
