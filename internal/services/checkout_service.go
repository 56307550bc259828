package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/discount"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/store"

	"github.com/google/uuid"
)

// PaymentGateway создаёт намерения платежа у провайдера.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string, metadata map[string]string) (*payments.PaymentIntent, error)
	PublishableKey() string
}

// CheckoutConfig — публичные параметры оформления заказа для клиента.
type CheckoutConfig struct {
	PublishableKey        string  `json:"publishable_key"`
	Currency              string  `json:"currency"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold"`
}

// CheckoutDeps — зависимости сервиса оформления заказа.
type CheckoutDeps struct {
	Store       store.Store
	Shipping    *ShippingService
	Promos      *PromoService
	Coupons     *CouponService
	GiftCards   *GiftCardService
	StoreCredit *StoreCreditService
	Payments    PaymentGateway
	Translator  *i18n.Translator
	Log         *logger.Logger
	Currency    string
}

// CheckoutService считает итог корзины и оформляет заказы.
type CheckoutService struct {
	store     store.Store
	shipping  *ShippingService
	promos    *PromoService
	coupons   *CouponService
	giftCards *GiftCardService
	credits   *StoreCreditService
	payments  PaymentGateway
	tr        *i18n.Translator
	log       *logger.Logger
	currency  string
	now       func() time.Time
}

// NewCheckoutService создаёт сервис оформления заказа.
func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	tr := deps.Translator
	if tr == nil {
		tr = i18n.Default()
	}
	currency := strings.ToUpper(deps.Currency)
	if currency == "" {
		currency = "USD"
	}
	return &CheckoutService{
		store:     deps.Store,
		shipping:  deps.Shipping,
		promos:    deps.Promos,
		coupons:   deps.Coupons,
		giftCards: deps.GiftCards,
		credits:   deps.StoreCredit,
		payments:  deps.Payments,
		tr:        tr,
		log:       deps.Log,
		currency:  currency,
		now:       time.Now,
	}
}

// Config возвращает параметры для клиентской части оплаты.
func (s *CheckoutService) Config() CheckoutConfig {
	cfg := CheckoutConfig{
		Currency:              s.currency,
		FreeShippingThreshold: s.shipping.Catalog().FreeThreshold(),
	}
	if s.payments != nil {
		cfg.PublishableKey = s.payments.PublishableKey()
	}
	return cfg
}

// Quote считает итог корзины: подытог, доставка, не более одной скидки,
// подарочная карта, store credit. Ничего не изменяет.
func (s *CheckoutService) Quote(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Quote, error) {
	req, err := withCatalogPrices(ctx, s.store, req)
	if err != nil {
		return nil, err
	}
	return s.buildQuote(ctx, s.store, locale, req, false)
}

// PlaceOrder оформляет заказ в одной транзакции: резервирует товар,
// использует скидку, списывает подарочную карту и store credit, создаёт заказ
// и намерение платежа на оставшуюся сумму. При нехватке товара заказ
// отклоняется целиком.
func (s *CheckoutService) PlaceOrder(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Order, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperror.Validation("user_id is required", nil)
	}

	var order *models.Order
	err := s.store.InTx(ctx, func(tx store.Store) error {
		req, err := withCatalogPrices(ctx, tx, req)
		if err != nil {
			return err
		}
		q, err := s.buildQuote(ctx, tx, locale, req, true)
		if err != nil {
			return err
		}

		for _, item := range mergeItems(req.Items) {
			if err := tx.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
				if apperror.Is(err, apperror.KindConflict) {
					return apperror.Conflict(fmt.Sprintf("insufficient stock for product %s", item.ProductID), err)
				}
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
		}

		orderID := uuid.New()
		if q.Discount != nil {
			switch q.Discount.Source {
			case discountSourcePromo:
				err = s.promos.redeem(ctx, tx, q.Discount.Code)
			case discountSourceCoupon:
				err = s.coupons.redeem(ctx, tx, *q.Discount.CouponID)
			}
			if err != nil {
				return err
			}
		}
		if q.GiftCardAmount > 0 {
			if _, err := s.giftCards.redeem(ctx, tx, locale, NormalizeCode(*req.GiftCardCode), userID, q.GiftCardAmount); err != nil {
				return err
			}
		}
		if q.StoreCreditAmount > 0 {
			if _, err := s.credits.spend(ctx, tx, userID, q.StoreCreditAmount, &orderID); err != nil {
				return err
			}
		}

		order = s.newOrder(orderID, userID, req, q)
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		if order.Total > 0 {
			if s.payments == nil {
				return apperror.Unavailable("payments are not configured", nil)
			}
			intent, err := s.payments.CreatePaymentIntent(ctx, payments.ToCents(order.Total), order.Currency, orderID.String(), map[string]string{
				"order_id": orderID.String(),
				"user_id":  userID,
			})
			if err != nil {
				return err
			}
			if err := tx.UpdateOrderPayment(ctx, orderID, intent.ID, models.OrderStatusPending); err != nil {
				return err
			}
			order.PaymentIntentID = &intent.ID
			order.PaymentSecret = intent.ClientSecret
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
		"status":   order.Status,
	}).Info("Order placed")
	return order, nil
}

const (
	discountSourcePromo  = "promo"
	discountSourceCoupon = "coupon"
)

// habitOrder задаёт приоритет привычек при равном числе заказов.
var habitOrder = []models.ShippingHabit{models.ShippingHabitExpress, models.ShippingHabitPickup, models.ShippingHabitEconomy}

// shippingHabit выводит привычку доставки из прошлых заказов пользователя.
// Без истории привычка пустая, и купоны с условием на привычку не применяются.
func shippingHabit(ctx context.Context, st store.Store, userID string) (models.ShippingHabit, error) {
	if userID == "" {
		return "", nil
	}
	counts, err := st.ShippingTypeCounts(ctx, userID)
	if err != nil {
		return "", err
	}

	byHabit := make(map[models.ShippingHabit]int, len(habitOrder))
	for t, n := range counts {
		byHabit[t.Habit()] += n
	}
	var (
		best models.ShippingHabit
		top  int
	)
	for _, h := range habitOrder {
		if byHabit[h] > top {
			best, top = h, byHabit[h]
		}
	}
	return best, nil
}

// buildQuote считает итог, читая данные через st. В строгом режиме
// неприменимые скидка или карта приводят к ошибке, иначе к сообщению в Quote.
func (s *CheckoutService) buildQuote(ctx context.Context, st store.Store, locale string, req *models.CheckoutRequest, strict bool) (*models.Quote, error) {
	subtotal, err := cartSubtotal(req.Items)
	if err != nil {
		return nil, err
	}

	opt, err := s.shipping.Quote(subtotal, req.ShippingType, locale)
	if err != nil {
		return nil, err
	}

	q := &models.Quote{
		Subtotal:     subtotal,
		Shipping:     opt,
		ShippingCost: opt.Price,
		Currency:     s.currency,
		Estimate:     opt.Estimate,
		Messages:     []string{},
	}

	userID := strings.TrimSpace(req.UserID)
	habit, err := shippingHabit(ctx, st, userID)
	if err != nil {
		return nil, err
	}
	order := discount.Order{
		Subtotal:      subtotal,
		Shipping:      opt.Price,
		UserID:        userID,
		ShippingHabit: habit,
	}
	candidates, err := s.discountCandidates(ctx, st, locale, req, strict, q)
	if err != nil {
		return nil, err
	}

	now := s.now()
	best, results := discount.SelectBest(order, candidates, now)
	for _, r := range results {
		if best != nil && r.Candidate == best.Candidate {
			continue
		}
		q.Messages = append(q.Messages, discount.Message(s.tr, locale, s.currency, r))
	}
	if strict && best == nil && len(results) > 0 && !anyEligible(results) {
		return nil, apperror.Conflict(discount.Message(s.tr, locale, s.currency, results[0]), nil)
	}

	subAfter, shipAfter := discount.Apply(order, best)
	q.DiscountAmount = round2(subtotal - subAfter + opt.Price - shipAfter)
	if best != nil {
		applied := &models.AppliedDiscount{
			Code:        best.Candidate.Code(),
			SubtotalOff: best.SubtotalOff,
			ShippingOff: best.ShippingOff,
		}
		if best.Candidate.Coupon != nil {
			applied.Source = discountSourceCoupon
			id := best.Candidate.Coupon.ID
			applied.CouponID = &id
		} else {
			applied.Source = discountSourcePromo
		}
		q.Discount = applied
		q.Messages = append(q.Messages, discount.Message(s.tr, locale, s.currency, *best))
	}
	remaining := round2(subAfter + shipAfter)

	if req.GiftCardCode != nil && NormalizeCode(*req.GiftCardCode) != "" {
		code := NormalizeCode(*req.GiftCardCode)
		card, err := st.GetGiftCard(ctx, code)
		switch {
		case apperror.Is(err, apperror.KindNotFound):
			if strict {
				return nil, err
			}
			q.Messages = append(q.Messages, err.Error())
		case err != nil:
			return nil, err
		case card.Expired(now):
			msg := s.tr.T(locale, i18n.MsgGiftCardExpired)
			if strict {
				return nil, apperror.Validation(msg, nil)
			}
			q.Messages = append(q.Messages, msg)
		default:
			q.GiftCardAmount = round2(math.Min(card.Balance, remaining))
			remaining = round2(remaining - q.GiftCardAmount)
		}
	}

	if req.UseStoreCredit && order.UserID != "" && remaining > 0 {
		balance, err := st.GetCreditBalance(ctx, order.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get store credit balance: %w", err)
		}
		if balance > 0 {
			q.StoreCreditAmount = round2(math.Min(balance, remaining))
			remaining = round2(remaining - q.StoreCreditAmount)
		}
	}

	q.Total = math.Max(0, remaining)
	return q, nil
}

func (s *CheckoutService) discountCandidates(ctx context.Context, st store.Store, locale string, req *models.CheckoutRequest, strict bool, q *models.Quote) ([]discount.Candidate, error) {
	var candidates []discount.Candidate

	if req.PromoCode != nil && NormalizeCode(*req.PromoCode) != "" {
		promo, err := st.GetPromo(ctx, NormalizeCode(*req.PromoCode))
		switch {
		case apperror.Is(err, apperror.KindNotFound):
			if strict {
				return nil, err
			}
			q.Messages = append(q.Messages, err.Error())
		case err != nil:
			return nil, err
		default:
			candidates = append(candidates, discount.Candidate{Promo: promo})
		}
	}

	if req.CouponID != nil {
		coupon, err := st.GetCoupon(ctx, *req.CouponID)
		switch {
		case apperror.Is(err, apperror.KindNotFound):
			if strict {
				return nil, err
			}
			q.Messages = append(q.Messages, err.Error())
		case err != nil:
			return nil, err
		default:
			candidates = append(candidates, discount.Candidate{Coupon: coupon})
		}
	}

	return candidates, nil
}

func (s *CheckoutService) newOrder(id uuid.UUID, userID string, req *models.CheckoutRequest, q *models.Quote) *models.Order {
	now := s.now()
	order := &models.Order{
		ID:                id,
		UserID:            userID,
		Subtotal:          q.Subtotal,
		ShippingType:      q.Shipping.Type,
		ShippingCost:      q.ShippingCost,
		DiscountAmount:    q.DiscountAmount,
		GiftCardAmount:    q.GiftCardAmount,
		StoreCreditAmount: q.StoreCreditAmount,
		Total:             q.Total,
		Currency:          q.Currency,
		Status:            models.OrderStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if q.Total == 0 {
		order.Status = models.OrderStatusPaid
	}
	if q.Discount != nil {
		code := q.Discount.Code
		order.DiscountCode = &code
		order.Discount = q.Discount
	}
	if q.Estimate != nil {
		maxDate := q.Estimate.MaxDate
		order.EstimatedDelivery = &maxDate
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   id,
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return order
}

func anyEligible(results []discount.Result) bool {
	for _, r := range results {
		if r.Eligible {
			return true
		}
	}
	return false
}

// withCatalogPrices заменяет цены позиций ценами из каталога склада.
// Позиции без цены в каталоге сохраняют цену из запроса.
func withCatalogPrices(ctx context.Context, st store.Store, req *models.CheckoutRequest) (*models.CheckoutRequest, error) {
	if len(req.Items) == 0 {
		return req, nil
	}
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	prices, err := st.GetPrices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog prices: %w", err)
	}
	if len(prices) == 0 {
		return req, nil
	}

	priced := *req
	priced.Items = make([]models.CheckoutItem, len(req.Items))
	for i, item := range req.Items {
		if p, ok := prices[item.ProductID]; ok {
			item.Price = p
		}
		priced.Items[i] = item
	}
	return &priced, nil
}

func cartSubtotal(items []models.CheckoutItem) (float64, error) {
	if len(items) == 0 {
		return 0, apperror.Validation("cart is empty", nil)
	}
	var subtotal float64
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return 0, apperror.Validation("product_id is required", nil)
		}
		if item.Quantity <= 0 {
			return 0, apperror.Validation(fmt.Sprintf("quantity must be positive for product %s", item.ProductID), nil)
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return 0, apperror.Validation(fmt.Sprintf("invalid price for product %s", item.ProductID), nil)
		}
		subtotal += item.Price * float64(item.Quantity)
	}
	return round2(subtotal), nil
}

// mergeItems суммирует количество одинаковых товаров, сохраняя порядок.
func mergeItems(items []models.CheckoutItem) []models.CheckoutItem {
	index := make(map[string]int, len(items))
	out := make([]models.CheckoutItem, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if i, ok := index[id]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[id] = len(out)
		item.ProductID = id
		out = append(out, item)
	}
	return out
}
