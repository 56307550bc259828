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

	"github.com/google/uuid"
)

// CouponService управляет персональными купонами пользователей.
type CouponService struct {
	store    store.Store
	tr       *i18n.Translator
	log      *logger.Logger
	currency string
	now      func() time.Time
}

// NewCouponService создаёт сервис купонов.
func NewCouponService(st store.Store, tr *i18n.Translator, log *logger.Logger, currency string) *CouponService {
	if tr == nil {
		tr = i18n.Default()
	}
	return &CouponService{store: st, tr: tr, log: log, currency: currency, now: time.Now}
}

// ListForUser возвращает купоны пользователя.
func (s *CouponService) ListForUser(ctx context.Context, userID string) ([]*models.UserCoupon, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.BadRequest("userId is required", nil)
	}
	return s.store.ListCouponsForUser(ctx, userID)
}

// Assign выдаёт купон пользователю.
func (s *CouponService) Assign(ctx context.Context, req *models.AssignCouponRequest) (*models.UserCoupon, error) {
	maxUses := req.MaxUses
	if maxUses == 0 {
		maxUses = 1
	}
	coupon := &models.UserCoupon{
		ID:            uuid.New(),
		UserID:        strings.TrimSpace(req.UserID),
		Code:          NormalizeCode(req.Code),
		Type:          req.Type,
		Value:         req.Value,
		MinOrder:      req.MinOrder,
		MaxUses:       maxUses,
		ShippingHabit: req.ShippingHabit,
		ExpiresAt:     req.ExpiresAt,
		CreatedAt:     s.now(),
	}
	if err := coupon.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	if err := s.store.CreateCoupon(ctx, coupon); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"coupon_id": coupon.ID,
		"user_id":   coupon.UserID,
		"code":      coupon.Code,
	}).Info("Coupon assigned")
	return coupon, nil
}

// Evaluate проверяет купон пользователя для заказа без его использования.
func (s *CouponService) Evaluate(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error) {
	coupon, err := s.store.GetCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}
	res := discount.EvaluateCoupon(order, coupon, s.now())
	return toDiscountCheck(s.tr, locale, s.currency, res), nil
}

// Redeem использует купон, если он применим к заказу. Привычка доставки
// order заменяется выведенной из истории заказов пользователя.
func (s *CouponService) Redeem(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error) {
	var check *models.DiscountCheck
	err := s.store.InTx(ctx, func(tx store.Store) error {
		coupon, err := tx.GetCoupon(ctx, couponID)
		if err != nil {
			return err
		}
		if order.ShippingHabit, err = shippingHabit(ctx, tx, order.UserID); err != nil {
			return err
		}
		res := discount.EvaluateCoupon(order, coupon, s.now())
		check = toDiscountCheck(s.tr, locale, s.currency, res)
		if !res.Eligible {
			return apperror.Conflict(check.Message, nil)
		}
		return s.redeem(ctx, tx, couponID)
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (s *CouponService) redeem(ctx context.Context, tx store.Store, couponID uuid.UUID) error {
	if err := tx.IncrementCouponUsage(ctx, couponID); err != nil {
		return err
	}
	s.log.WithField("coupon_id", couponID).Debug("Coupon usage incremented")
	return nil
}
