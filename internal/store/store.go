// Package store описывает репозитории витрины. Сервисы зависят только от этих
// интерфейсов, конкретная реализация лежит в store/postgres.
//
// Изменения баланса и счётчиков выполняются условными обновлениями: запись
// меняется только если условие (остаток, лимит, склад) ещё выполняется.
// Если условие не выполнено, метод возвращает apperror.Conflict, и вызывающий
// код не должен повторять операцию без повторной проверки.
package store

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// PromoRepository хранит общие промокоды.
type PromoRepository interface {
	CreatePromo(ctx context.Context, p *models.PromoCode) error
	GetPromo(ctx context.Context, code string) (*models.PromoCode, error)
	ListPromos(ctx context.Context, limit, offset int) ([]*models.PromoCode, error)
	UpdatePromo(ctx context.Context, p *models.PromoCode) error
	DeletePromo(ctx context.Context, code string) error
	// IncrementPromoUsage увеличивает used_count, пока лимит не исчерпан.
	IncrementPromoUsage(ctx context.Context, code string) error
}

// CouponRepository хранит купоны пользователей.
type CouponRepository interface {
	CreateCoupon(ctx context.Context, c *models.UserCoupon) error
	GetCoupon(ctx context.Context, id uuid.UUID) (*models.UserCoupon, error)
	ListCouponsForUser(ctx context.Context, userID string) ([]*models.UserCoupon, error)
	// IncrementCouponUsage увеличивает used_count, только если used_count < max_uses.
	IncrementCouponUsage(ctx context.Context, id uuid.UUID) error
}

// GiftCardRepository хранит подарочные карты.
type GiftCardRepository interface {
	CreateGiftCard(ctx context.Context, g *models.GiftCard) error
	GetGiftCard(ctx context.Context, code string) (*models.GiftCard, error)
	// DebitGiftCard списывает amount, только если остаток не меньше amount
	// и карта не истекла на момент now. Возвращает новый остаток.
	DebitGiftCard(ctx context.Context, code string, amount float64, now time.Time) (float64, error)
	// ClaimGiftCard назначает владельца карте, у которой его ещё нет.
	ClaimGiftCard(ctx context.Context, code, userID string) error
}

// StoreCreditRepository ведёт журнал и баланс store credit.
type StoreCreditRepository interface {
	// AddCredit добавляет начисление и увеличивает баланс. Возвращает новый баланс.
	AddCredit(ctx context.Context, entry *models.StoreCreditEntry) (float64, error)
	GetCreditBalance(ctx context.Context, userID string) (float64, error)
	ListCreditEntries(ctx context.Context, userID string, limit int) ([]models.StoreCreditEntry, error)
	// SpendCredit списывает amount, только если баланс не меньше amount.
	SpendCredit(ctx context.Context, entry *models.StoreCreditEntry) (float64, error)
}

// OrderRepository хранит заказы.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderPayment(ctx context.Context, id uuid.UUID, paymentIntentID string, status models.OrderStatus) error
	// ShippingTypeCounts считает неотменённые заказы пользователя по способам доставки.
	ShippingTypeCounts(ctx context.Context, userID string) (map[models.ShippingType]int, error)
}

// InventoryRepository хранит складские остатки.
type InventoryRepository interface {
	GetStock(ctx context.Context, productID string) (int, error)
	// ReserveStock уменьшает остаток, только если на складе не меньше qty.
	ReserveStock(ctx context.Context, productID string, qty int) error
	// GetPrices возвращает каталожные цены; товары без цены в ответ не попадают.
	GetPrices(ctx context.Context, productIDs []string) (map[string]float64, error)
}

// BannerRepository хранит баннеры витрины.
type BannerRepository interface {
	// ListBanners возвращает активные на момент now баннеры. Пустая позиция означает все.
	ListBanners(ctx context.Context, position models.BannerPosition, now time.Time) ([]models.Banner, error)
}

// ReviewRepository хранит отзывы.
type ReviewRepository interface {
	CreateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, productID string, limit int) ([]models.Review, error)
}

// AnalyticsRepository строит агрегаты по заказам.
type AnalyticsRepository interface {
	OrdersStats(ctx context.Context, filter models.AnalyticsFilter) (*models.OrdersStats, error)
	OverviewStats(ctx context.Context, filter models.AnalyticsFilter) (*models.OverviewStats, error)
	ProductsStats(ctx context.Context, filter models.AnalyticsFilter) (*models.ProductsStats, error)
}

// Store объединяет все репозитории.
type Store interface {
	PromoRepository
	CouponRepository
	GiftCardRepository
	StoreCreditRepository
	OrderRepository
	InventoryRepository
	BannerRepository
	ReviewRepository
	AnalyticsRepository

	// InTx выполняет fn в одной транзакции. Вложенный вызов переиспользует
	// текущую транзакцию.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
