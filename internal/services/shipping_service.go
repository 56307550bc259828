package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/shipping"
)

const defaultShippingCacheTTL = 30 * time.Minute

// ShippingService отдаёт варианты доставки с ценами и сроками.
// Цены и названия кешируются по корзине подытога (ниже или выше порога
// бесплатной доставки) и локали; окна доставки считаются на каждый запрос.
type ShippingService struct {
	catalog *shipping.Catalog
	tr      *i18n.Translator
	cache   resultCache
	log     *logger.Logger
	now     func() time.Time
}

// NewShippingService создаёт сервис доставки.
func NewShippingService(catalog *shipping.Catalog, redisClient *redis.Client, tr *i18n.Translator, log *logger.Logger, ttl time.Duration) *ShippingService {
	if tr == nil {
		tr = i18n.Default()
	}
	if ttl <= 0 {
		ttl = defaultShippingCacheTTL
	}
	return &ShippingService{
		catalog: catalog,
		tr:      tr,
		cache:   resultCache{redis: redisClient, log: log, ttl: ttl},
		log:     log,
		now:     time.Now,
	}
}

// Catalog возвращает каталог доставки.
func (s *ShippingService) Catalog() *shipping.Catalog {
	return s.catalog
}

// Options возвращает варианты доставки для подытога с окнами доставки.
// Некорректный подытог считается нулевым.
func (s *ShippingService) Options(ctx context.Context, subtotal float64, locale string) []models.ShippingOption {
	subtotal = sanitizeSubtotal(subtotal)
	loc := s.tr.Resolve(locale)
	key := s.cacheKey(subtotal, loc)

	var options []models.ShippingOption
	if !s.cache.tryGet(ctx, key, &options) || len(options) == 0 {
		options = s.catalog.Options(subtotal)
		shipping.Localize(s.tr, string(loc), options)
		s.cache.save(ctx, key, options)
	}

	return s.catalog.WithEstimates(options, s.now())
}

// Quote возвращает выбранный способ доставки с ценой и окном доставки.
func (s *ShippingService) Quote(subtotal float64, shippingType models.ShippingType, locale string) (models.ShippingOption, error) {
	if shippingType == "" {
		shippingType = models.ShippingStandard
	}
	opt, ok := s.catalog.Option(sanitizeSubtotal(subtotal), shippingType)
	if !ok {
		return models.ShippingOption{}, apperror.Validation(fmt.Sprintf("unknown shipping type %q", shippingType), nil)
	}
	opts := []models.ShippingOption{opt}
	shipping.Localize(s.tr, locale, opts)
	s.catalog.WithEstimates(opts, s.now())
	return opts[0], nil
}

// Invalidate сбрасывает кеш вариантов доставки.
func (s *ShippingService) Invalidate(ctx context.Context) error {
	return s.cache.invalidate(ctx, redis.GenerateKey(redis.KeyPrefixShipping, ""))
}

func (s *ShippingService) cacheKey(subtotal float64, loc i18n.Locale) string {
	bucket := "paid"
	if subtotal >= s.catalog.FreeThreshold() {
		bucket = "free"
	}
	return redis.GenerateKey(redis.KeyPrefixShipping, strings.Join([]string{bucket, string(loc)}, ":"))
}

func sanitizeSubtotal(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
