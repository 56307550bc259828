package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"storefront/internal/config"
	"storefront/internal/discount"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

type stubShipping struct {
	options  []models.ShippingOption
	subtotal float64
	locale   string
}

func (s *stubShipping) Options(ctx context.Context, subtotal float64, locale string) []models.ShippingOption {
	s.subtotal = subtotal
	s.locale = locale
	return s.options
}

type stubCoupons struct {
	coupons []*models.UserCoupon
	coupon  *models.UserCoupon
	check   *models.DiscountCheck
	err     error
	calls   int
	order   discount.Order
}

func (s *stubCoupons) ListForUser(ctx context.Context, userID string) ([]*models.UserCoupon, error) {
	s.calls++
	return s.coupons, s.err
}

func (s *stubCoupons) Assign(ctx context.Context, req *models.AssignCouponRequest) (*models.UserCoupon, error) {
	s.calls++
	return s.coupon, s.err
}

func (s *stubCoupons) Evaluate(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error) {
	s.calls++
	s.order = order
	return s.check, s.err
}

func (s *stubCoupons) Redeem(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error) {
	s.calls++
	s.order = order
	return s.check, s.err
}

type stubBanners struct {
	banners  []models.Banner
	err      error
	position models.BannerPosition
	calls    int
}

func (s *stubBanners) List(ctx context.Context, position models.BannerPosition) ([]models.Banner, error) {
	s.calls++
	s.position = position
	return s.banners, s.err
}

type stubPromoService struct {
	promo *models.PromoCode
	list  []*models.PromoCode
	check *models.DiscountCheck
	err   error
	code  string
}

func (s *stubPromoService) CreatePromoCode(ctx context.Context, req *models.CreatePromoCodeRequest) (*models.PromoCode, error) {
	return s.promo, s.err
}

func (s *stubPromoService) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	s.code = code
	return s.promo, s.err
}

func (s *stubPromoService) UpdatePromoCode(ctx context.Context, code string, req *models.UpdatePromoCodeRequest) (*models.PromoCode, error) {
	s.code = code
	return s.promo, s.err
}

func (s *stubPromoService) DeletePromoCode(ctx context.Context, code string) error {
	s.code = code
	return s.err
}

func (s *stubPromoService) ListPromoCodes(ctx context.Context, limit, offset int) ([]*models.PromoCode, error) {
	return s.list, s.err
}

func (s *stubPromoService) Evaluate(ctx context.Context, locale string, req *models.ValidatePromoRequest) (*models.DiscountCheck, error) {
	return s.check, s.err
}

type stubGiftCards struct {
	card       *models.GiftCard
	validation services.GiftCardValidation
	err        error
}

func (s *stubGiftCards) Validate(locale string, req *models.ValidateGiftCardRequest) services.GiftCardValidation {
	return s.validation
}

func (s *stubGiftCards) Issue(ctx context.Context, locale string, req *models.IssueGiftCardRequest) (*models.GiftCard, error) {
	return s.card, s.err
}

func (s *stubGiftCards) Check(ctx context.Context, code string) (*models.GiftCard, error) {
	return s.card, s.err
}

func (s *stubGiftCards) Redeem(ctx context.Context, locale, code string, req *models.RedeemGiftCardRequest) (*models.GiftCard, error) {
	return s.card, s.err
}

type stubCredits struct {
	credit  *models.StoreCredit
	balance float64
	err     error
	calls   int
	spent   float64
}

func (s *stubCredits) Issue(ctx context.Context, req *models.IssueStoreCreditRequest) (*models.StoreCredit, error) {
	s.calls++
	return s.credit, s.err
}

func (s *stubCredits) Balance(ctx context.Context, userID string) (*models.StoreCredit, error) {
	s.calls++
	return s.credit, s.err
}

func (s *stubCredits) Spend(ctx context.Context, userID string, amount float64, orderID *uuid.UUID) (float64, error) {
	s.calls++
	s.spent = amount
	return s.balance, s.err
}

type stubReviews struct {
	review  *models.Review
	reviews []models.Review
	err     error
	limit   int
}

func (s *stubReviews) Create(ctx context.Context, locale string, req *models.CreateReviewRequest) (*models.Review, error) {
	return s.review, s.err
}

func (s *stubReviews) List(ctx context.Context, productID string, limit int) ([]models.Review, error) {
	s.limit = limit
	return s.reviews, s.err
}

type stubCheckout struct {
	quote  *models.Quote
	order  *models.Order
	config services.CheckoutConfig
	err    error
	calls  int
}

func (s *stubCheckout) Quote(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Quote, error) {
	s.calls++
	return s.quote, s.err
}

func (s *stubCheckout) PlaceOrder(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Order, error) {
	s.calls++
	return s.order, s.err
}

func (s *stubCheckout) Config() services.CheckoutConfig {
	return s.config
}

type stubAnalyticsService struct {
	orders   *models.OrdersStats
	overview *models.OverviewStats
	products *models.ProductsStats
	err      error
	filter   *models.AnalyticsFilter
}

func (s *stubAnalyticsService) Orders(ctx context.Context, filter *models.AnalyticsFilter) (*models.OrdersStats, error) {
	s.filter = filter
	return s.orders, s.err
}

func (s *stubAnalyticsService) Overview(ctx context.Context, filter *models.AnalyticsFilter) (*models.OverviewStats, error) {
	s.filter = filter
	return s.overview, s.err
}

func (s *stubAnalyticsService) Products(ctx context.Context, filter *models.AnalyticsFilter) (*models.ProductsStats, error) {
	s.filter = filter
	return s.products, s.err
}

// recordingProducer запоминает типы опубликованных событий.
type recordingProducer struct {
	mu     sync.Mutex
	events []models.EventType
	err    error
}

func (p *recordingProducer) record(t models.EventType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, t)
	return p.err
}

func (p *recordingProducer) PublishOrderPlaced(order *models.Order) error {
	return p.record(models.EventTypeOrderPlaced)
}

func (p *recordingProducer) PublishDiscountRedeemed(eventType models.EventType, data models.DiscountRedeemedData) error {
	return p.record(eventType)
}

func (p *recordingProducer) PublishGiftCardEvent(eventType models.EventType, data models.GiftCardEventData) error {
	return p.record(eventType)
}

func (p *recordingProducer) PublishStoreCreditIssued(data models.StoreCreditEventData) error {
	return p.record(models.EventTypeStoreCreditIssued)
}

func (p *recordingProducer) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.EventType(nil), p.events...)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}
