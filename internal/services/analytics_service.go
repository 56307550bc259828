package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/store"
)

const (
	DefaultTopItemsLimit = 10
	defaultRangeDays     = 30
	defaultMaxRangeDays  = 365
	defaultCacheTTL      = 10 * time.Minute
)

// AnalyticsService агрегирует показатели магазина и кеширует тяжёлые выборки.
type AnalyticsService struct {
	store           store.AnalyticsRepository
	cache           resultCache
	log             *logger.Logger
	defaultTopItems int
	maxRange        time.Duration
	now             func() time.Time
}

// NewAnalyticsService создает новый сервис аналитики.
func NewAnalyticsService(st store.AnalyticsRepository, redisClient *redis.Client, log *logger.Logger, cfg *config.AnalyticsConfig) *AnalyticsService {
	cacheTTL := defaultCacheTTL
	defaultTop := DefaultTopItemsLimit
	maxDays := defaultMaxRangeDays

	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.DefaultTopLimit > 0 {
			defaultTop = cfg.DefaultTopLimit
		}
		if cfg.MaxRangeDays > 0 {
			maxDays = cfg.MaxRangeDays
		}
	}

	return &AnalyticsService{
		store:           st,
		cache:           resultCache{redis: redisClient, log: log, ttl: cacheTTL},
		log:             log,
		defaultTopItems: defaultTop,
		maxRange:        time.Duration(maxDays) * 24 * time.Hour,
		now:             time.Now,
	}
}

// Orders возвращает количество заказов по статусам и дням.
func (s *AnalyticsService) Orders(ctx context.Context, filter *models.AnalyticsFilter) (*models.OrdersStats, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	cacheKey := s.buildCacheKey("orders", filter)

	var cached models.OrdersStats
	if s.cache.tryGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.store.OrdersStats(ctx, *filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders stats: %w", err)
	}
	stats.GeneratedAt = s.now()

	s.cache.save(ctx, cacheKey, stats)
	return stats, nil
}

// Overview возвращает выручку, средний чек и суммы скидок за период.
func (s *AnalyticsService) Overview(ctx context.Context, filter *models.AnalyticsFilter) (*models.OverviewStats, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	cacheKey := s.buildCacheKey("overview", filter)

	var cached models.OverviewStats
	if s.cache.tryGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.store.OverviewStats(ctx, *filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview stats: %w", err)
	}
	if stats.OrdersCount > 0 {
		stats.AverageOrderValue = round2(stats.Revenue / float64(stats.OrdersCount))
	}
	stats.GeneratedAt = s.now()

	s.cache.save(ctx, cacheKey, stats)
	return stats, nil
}

// Products возвращает топ товаров по выручке.
func (s *AnalyticsService) Products(ctx context.Context, filter *models.AnalyticsFilter) (*models.ProductsStats, error) {
	filter, err := s.normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	cacheKey := s.buildCacheKey("products", filter)

	var cached models.ProductsStats
	if s.cache.tryGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.store.ProductsStats(ctx, *filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load products stats: %w", err)
	}
	if stats.Products == nil {
		stats.Products = []models.ProductStat{}
	}
	stats.GeneratedAt = s.now()

	s.cache.save(ctx, cacheKey, stats)
	return stats, nil
}

// Invalidate сбрасывает закешированные отчёты, например после нового заказа.
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	return s.cache.invalidate(ctx, redis.GenerateKey(redis.KeyPrefixStats, ""))
}

func (s *AnalyticsService) buildCacheKey(kind string, filter *models.AnalyticsFilter) string {
	return redis.GenerateKey(redis.KeyPrefixStats, fmt.Sprintf(
		"%s:%s:%s:%d:%s",
		kind,
		filter.From.UTC().Format(time.RFC3339),
		filter.To.UTC().Format(time.RFC3339),
		filter.TopItemsLimit,
		strings.Join(filter.ProductIDs, ","),
	))
}

func (s *AnalyticsService) normalizeFilter(filter *models.AnalyticsFilter) (*models.AnalyticsFilter, error) {
	if filter == nil {
		filter = &models.AnalyticsFilter{}
	}
	if filter.To.IsZero() {
		// граница округляется до часа, чтобы отчёты без периода попадали в кеш
		filter.To = s.now().Truncate(time.Hour).Add(time.Hour)
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, 0, -defaultRangeDays)
	}
	if filter.From.After(filter.To) {
		return nil, apperror.Validation("from must be before to", nil)
	}
	if filter.To.Sub(filter.From) > s.maxRange {
		return nil, apperror.Validation(fmt.Sprintf("range must not exceed %d days", int(s.maxRange.Hours()/24)), nil)
	}
	if filter.TopItemsLimit <= 0 {
		filter.TopItemsLimit = s.defaultTopItems
	}
	if len(filter.ProductIDs) > 0 {
		ids := append([]string(nil), filter.ProductIDs...)
		sort.Strings(ids)
		filter.ProductIDs = ids
	}
	return filter, nil
}
