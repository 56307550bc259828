package services

import (
	"context"
	"math"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/validate"

	"github.com/google/uuid"
)

// GiftCardValidation — результат проверки кода и номинала карты.
type GiftCardValidation struct {
	Valid  bool            `json:"valid"`
	Code   validate.Result `json:"code"`
	Amount validate.Result `json:"amount"`
}

// GiftCardService выпускает подарочные карты и списывает с них средства.
type GiftCardService struct {
	store    store.Store
	tr       *i18n.Translator
	log      *logger.Logger
	currency string
	now      func() time.Time
}

// NewGiftCardService создаёт сервис подарочных карт.
func NewGiftCardService(st store.Store, tr *i18n.Translator, log *logger.Logger, currency string) *GiftCardService {
	if tr == nil {
		tr = i18n.Default()
	}
	return &GiftCardService{store: st, tr: tr, log: log, currency: strings.ToUpper(currency), now: time.Now}
}

// Validate проверяет код и номинал без обращения к хранилищу.
func (s *GiftCardService) Validate(locale string, req *models.ValidateGiftCardRequest) GiftCardValidation {
	v := validate.New(s.tr, locale)
	res := GiftCardValidation{
		Code:   v.GiftCardCode(req.Code),
		Amount: v.GiftCardAmount(req.Amount),
	}
	res.Valid = res.Code.Valid && res.Amount.Valid
	return res
}

// Issue выпускает новую карту с начальным балансом.
func (s *GiftCardService) Issue(ctx context.Context, locale string, req *models.IssueGiftCardRequest) (*models.GiftCard, error) {
	check := s.Validate(locale, &models.ValidateGiftCardRequest{Code: req.Code, Amount: req.Amount})
	if !check.Code.Valid {
		return nil, apperror.Validation(check.Code.Message, nil)
	}
	if !check.Amount.Valid {
		return nil, apperror.Validation(check.Amount.Message, nil)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}
	now := s.now()
	card := &models.GiftCard{
		ID:             uuid.New(),
		Code:           NormalizeCode(req.Code),
		InitialBalance: req.Amount,
		Balance:        req.Amount,
		Currency:       currency,
		ExpiresAt:      req.ExpiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateGiftCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"code":   card.Code,
		"amount": card.Balance,
	}).Info("Gift card issued")
	return card, nil
}

// Check возвращает карту с текущим балансом.
func (s *GiftCardService) Check(ctx context.Context, code string) (*models.GiftCard, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, apperror.BadRequest("code is required", nil)
	}
	return s.store.GetGiftCard(ctx, code)
}

// Redeem списывает amount с карты. При первом списании с указанием
// пользователя карта закрепляется за ним.
func (s *GiftCardService) Redeem(ctx context.Context, locale, code string, req *models.RedeemGiftCardRequest) (*models.GiftCard, error) {
	code = NormalizeCode(code)
	var card *models.GiftCard
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := s.redeem(ctx, tx, locale, code, strings.TrimSpace(req.UserID), req.Amount); err != nil {
			return err
		}
		var err error
		card, err = tx.GetGiftCard(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// redeem проверяет карту и списывает amount в рамках tx. Возвращает новый баланс.
func (s *GiftCardService) redeem(ctx context.Context, tx store.Store, locale, code, userID string, amount float64) (float64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, apperror.Validation("amount must be positive", nil)
	}

	card, err := tx.GetGiftCard(ctx, code)
	if err != nil {
		return 0, err
	}
	now := s.now()
	if card.Expired(now) {
		return 0, apperror.Validation(s.tr.T(locale, i18n.MsgGiftCardExpired), nil)
	}
	if card.Balance < amount {
		return 0, apperror.Conflict(s.tr.T(locale, i18n.MsgGiftCardInsufficient), nil)
	}
	if userID != "" {
		switch {
		case card.OwnerUserID == nil:
			if err := tx.ClaimGiftCard(ctx, code, userID); err != nil {
				return 0, err
			}
		case *card.OwnerUserID != userID:
			return 0, apperror.Conflict("gift card belongs to another user", nil)
		}
	}

	balance, err := tx.DebitGiftCard(ctx, code, amount, now)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(map[string]interface{}{
		"code":    code,
		"amount":  amount,
		"balance": balance,
	}).Info("Gift card redeemed")
	return balance, nil
}
