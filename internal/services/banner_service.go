package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/store"
)

const defaultBannerCacheTTL = 5 * time.Minute

// BannerService отдаёт баннеры витрины с кешированием в Redis.
type BannerService struct {
	store store.BannerRepository
	cache resultCache
	log   *logger.Logger
	now   func() time.Time
}

// NewBannerService создаёт сервис баннеров.
func NewBannerService(st store.BannerRepository, redisClient *redis.Client, log *logger.Logger, ttl time.Duration) *BannerService {
	if ttl <= 0 {
		ttl = defaultBannerCacheTTL
	}
	return &BannerService{
		store: st,
		cache: resultCache{redis: redisClient, log: log, ttl: ttl},
		log:   log,
		now:   time.Now,
	}
}

// ParseBannerPosition разбирает позицию. Пустая строка означает все позиции.
func ParseBannerPosition(raw string) (models.BannerPosition, error) {
	pos := models.BannerPosition(strings.ToLower(strings.TrimSpace(raw)))
	if pos == "" || pos.Valid() {
		return pos, nil
	}
	return "", apperror.BadRequest(fmt.Sprintf("invalid position %q: expected top, mid or bottom", raw), nil)
}

// List возвращает активные баннеры позиции.
func (s *BannerService) List(ctx context.Context, position models.BannerPosition) ([]models.Banner, error) {
	if position != "" && !position.Valid() {
		return nil, apperror.BadRequest(fmt.Sprintf("invalid position %q", position), nil)
	}

	suffix := string(position)
	if suffix == "" {
		suffix = "all"
	}
	key := redis.GenerateKey(redis.KeyPrefixBanners, suffix)

	var banners []models.Banner
	if s.cache.tryGet(ctx, key, &banners) {
		return banners, nil
	}

	banners, err := s.store.ListBanners(ctx, position, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	if banners == nil {
		banners = []models.Banner{}
	}
	s.cache.save(ctx, key, banners)
	return banners, nil
}

// Invalidate сбрасывает кеш баннеров.
func (s *BannerService) Invalidate(ctx context.Context) error {
	return s.cache.invalidate(ctx, redis.GenerateKey(redis.KeyPrefixBanners, ""))
}
