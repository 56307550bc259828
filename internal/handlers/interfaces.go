package handlers

import (
	"context"
	"time"

	"storefront/internal/discount"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/google/uuid"
)

// ----- Shipping -----

type ShippingProvider interface {
	Options(ctx context.Context, subtotal float64, locale string) []models.ShippingOption
}

// ----- Coupons -----

type CouponService interface {
	ListForUser(ctx context.Context, userID string) ([]*models.UserCoupon, error)
	Assign(ctx context.Context, req *models.AssignCouponRequest) (*models.UserCoupon, error)
	Evaluate(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error)
	Redeem(ctx context.Context, locale string, couponID uuid.UUID, order discount.Order) (*models.DiscountCheck, error)
}

// ----- Banners -----

type BannerProvider interface {
	List(ctx context.Context, position models.BannerPosition) ([]models.Banner, error)
}

// ----- Promo -----

type PromoService interface {
	CreatePromoCode(ctx context.Context, req *models.CreatePromoCodeRequest) (*models.PromoCode, error)
	GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error)
	UpdatePromoCode(ctx context.Context, code string, req *models.UpdatePromoCodeRequest) (*models.PromoCode, error)
	DeletePromoCode(ctx context.Context, code string) error
	ListPromoCodes(ctx context.Context, limit, offset int) ([]*models.PromoCode, error)
	Evaluate(ctx context.Context, locale string, req *models.ValidatePromoRequest) (*models.DiscountCheck, error)
}

// ----- Gift cards & store credit -----

type GiftCardService interface {
	Validate(locale string, req *models.ValidateGiftCardRequest) services.GiftCardValidation
	Issue(ctx context.Context, locale string, req *models.IssueGiftCardRequest) (*models.GiftCard, error)
	Check(ctx context.Context, code string) (*models.GiftCard, error)
	Redeem(ctx context.Context, locale, code string, req *models.RedeemGiftCardRequest) (*models.GiftCard, error)
}

type StoreCreditService interface {
	Issue(ctx context.Context, req *models.IssueStoreCreditRequest) (*models.StoreCredit, error)
	Balance(ctx context.Context, userID string) (*models.StoreCredit, error)
	Spend(ctx context.Context, userID string, amount float64, orderID *uuid.UUID) (float64, error)
}

// ----- Reviews -----

type ReviewService interface {
	Create(ctx context.Context, locale string, req *models.CreateReviewRequest) (*models.Review, error)
	List(ctx context.Context, productID string, limit int) ([]models.Review, error)
}

// ----- Checkout -----

type CheckoutService interface {
	Quote(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Quote, error)
	PlaceOrder(ctx context.Context, locale string, req *models.CheckoutRequest) (*models.Order, error)
	Config() services.CheckoutConfig
}

// EventProducer публикует доменные события витрины.
type EventProducer interface {
	PublishOrderPlaced(order *models.Order) error
	PublishDiscountRedeemed(eventType models.EventType, data models.DiscountRedeemedData) error
	PublishGiftCardEvent(eventType models.EventType, data models.GiftCardEventData) error
	PublishStoreCreditIssued(data models.StoreCreditEventData) error
}

// ----- Analytics -----

type AnalyticsProvider interface {
	Orders(ctx context.Context, filter *models.AnalyticsFilter) (*models.OrdersStats, error)
	Overview(ctx context.Context, filter *models.AnalyticsFilter) (*models.OverviewStats, error)
	Products(ctx context.Context, filter *models.AnalyticsFilter) (*models.ProductsStats, error)
}

// ----- Rate limit -----

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Time, error)
	Enabled() bool
	Limit() int64
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (int64, int64, *time.Time, error)
}

// ----- Health -----

type StoreHealth interface {
	Ping(ctx context.Context) error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
