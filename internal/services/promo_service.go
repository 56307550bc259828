package services

import (
	"context"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/discount"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/store"
)

const defaultListLimit = 50

// PromoService управляет общими промокодами и проверкой их применимости.
type PromoService struct {
	store    store.Store
	tr       *i18n.Translator
	log      *logger.Logger
	currency string
	now      func() time.Time
}

// NewPromoService создаёт сервис промокодов.
func NewPromoService(st store.Store, tr *i18n.Translator, log *logger.Logger, currency string) *PromoService {
	if tr == nil {
		tr = i18n.Default()
	}
	return &PromoService{
		store:    st,
		tr:       tr,
		log:      log,
		currency: currency,
		now:      time.Now,
	}
}

// NormalizeCode приводит код скидки к каноническому виду.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreatePromoCode создаёт новый промокод.
func (s *PromoService) CreatePromoCode(ctx context.Context, req *models.CreatePromoCodeRequest) (*models.PromoCode, error) {
	now := s.now()
	promo := &models.PromoCode{
		Code:            NormalizeCode(req.Code),
		DiscountPercent: req.DiscountPercent,
		DiscountFixed:   req.DiscountFixed,
		MinOrder:        req.MinOrder,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUses:         req.MaxUses,
		Active:          req.Active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := promo.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	if err := s.store.CreatePromo(ctx, promo); err != nil {
		return nil, err
	}

	s.log.WithField("promo_code", promo.Code).Info("Promo code created")
	return promo, nil
}

// UpdatePromoCode обновляет параметры промокода.
func (s *PromoService) UpdatePromoCode(ctx context.Context, code string, req *models.UpdatePromoCodeRequest) (*models.PromoCode, error) {
	code = NormalizeCode(code)
	current, err := s.store.GetPromo(ctx, code)
	if err != nil {
		return nil, err
	}

	current.DiscountPercent = req.DiscountPercent
	current.DiscountFixed = req.DiscountFixed
	current.MinOrder = req.MinOrder
	current.ValidFrom = req.ValidFrom
	current.ValidUntil = req.ValidUntil
	current.MaxUses = req.MaxUses
	current.Active = req.Active
	current.UpdatedAt = s.now()
	if err := current.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	if err := s.store.UpdatePromo(ctx, current); err != nil {
		return nil, err
	}
	return s.store.GetPromo(ctx, code)
}

// DeletePromoCode удаляет промокод.
func (s *PromoService) DeletePromoCode(ctx context.Context, code string) error {
	return s.store.DeletePromo(ctx, NormalizeCode(code))
}

// GetPromoCode возвращает промокод по коду.
func (s *PromoService) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	return s.store.GetPromo(ctx, NormalizeCode(code))
}

// ListPromoCodes возвращает список промокодов.
func (s *PromoService) ListPromoCodes(ctx context.Context, limit, offset int) ([]*models.PromoCode, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListPromos(ctx, limit, offset)
}

// Evaluate проверяет промокод для корзины без его использования.
func (s *PromoService) Evaluate(ctx context.Context, locale string, req *models.ValidatePromoRequest) (*models.DiscountCheck, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, apperror.Validation("code is required", nil)
	}

	promo, err := s.store.GetPromo(ctx, code)
	if err != nil {
		return nil, err
	}

	order := discount.Order{Subtotal: req.Subtotal, Shipping: req.Shipping}
	res := discount.EvaluatePromo(order, promo, s.now())
	return toDiscountCheck(s.tr, locale, s.currency, res), nil
}

// redeem использует промокод в рамках транзакции tx.
func (s *PromoService) redeem(ctx context.Context, tx store.Store, code string) error {
	if err := tx.IncrementPromoUsage(ctx, code); err != nil {
		return err
	}
	s.log.WithField("promo_code", code).Debug("Promo code usage incremented")
	return nil
}

func toDiscountCheck(tr *i18n.Translator, locale, currency string, res discount.Result) *models.DiscountCheck {
	return &models.DiscountCheck{
		Code:        res.Candidate.Code(),
		Valid:       res.Eligible,
		Reason:      string(res.Reason),
		SubtotalOff: res.SubtotalOff,
		ShippingOff: res.ShippingOff,
		Saving:      res.Saving(),
		Message:     discount.Message(tr, locale, currency, res),
	}
}
