package services

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/redis"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает число запросов на ключ (IP) в фиксированном окне.
// Счётчики живут в Redis; при недоступности Redis и включённом LocalFallback
// используется token bucket в памяти процесса.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
	local   *localLimiter
}

type rateRedis interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// NewRateLimiter создаёт rate limiter.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}
	if redisClient == nil && !cfg.LocalFallback {
		return &RateLimiter{enabled: false}
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	rl := &RateLimiter{
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
	}
	if redisClient != nil {
		rl.redis = redisClient
	}
	if cfg.LocalFallback {
		rl.local = newLocalLimiter(rl.limit, rl.window)
	}
	return rl
}

// Allow возвращает признак разрешения, оставшийся лимит и время сброса окна.
func (r *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int64, resetAt time.Time, err error) {
	if !r.enabled {
		return true, r.limit, time.Now().Add(r.window), nil
	}
	if r.redis == nil {
		return r.allowLocal(key)
	}

	now := time.Now()
	redisKey := r.makeKey(key)

	count, err := r.redis.Incr(ctx, redisKey)
	if err != nil {
		if r.local != nil {
			r.warn(err, redisKey, "rate limiter redis failed, using local limiter")
			return r.allowLocal(key)
		}
		return false, 0, time.Time{}, fmt.Errorf("rate limiter incr failed: %w", err)
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, redisKey, r.window); err != nil {
			r.warn(err, redisKey, "failed to set rate limit ttl")
		}
	}

	ttl, ttlErr := r.redis.TTL(ctx, redisKey)
	if ttlErr != nil || ttl <= 0 {
		if ttlErr != nil {
			r.warn(ttlErr, redisKey, "failed to get rate limit ttl")
		}
		ttl = r.window
	}

	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	resetAt = now.Add(ttl)

	return count <= r.limit, remaining, resetAt, nil
}

func (r *RateLimiter) allowLocal(key string) (bool, int64, time.Time, error) {
	if r.local == nil {
		return true, r.limit, time.Now().Add(r.window), nil
	}
	allowed, remaining := r.local.allow(key)
	return allowed, remaining, time.Now().Add(r.window), nil
}

// Usage возвращает текущее значение окна и время сброса.
func (r *RateLimiter) Usage(ctx context.Context, key string) (used int64, remaining int64, resetAt *time.Time, err error) {
	if !r.enabled {
		return 0, r.limit, nil, nil
	}
	if r.redis == nil {
		if r.local == nil {
			return 0, r.limit, nil, nil
		}
		remaining = r.local.remaining(key)
		return r.limit - remaining, remaining, nil, nil
	}

	redisKey := r.makeKey(key)
	count, err := r.redis.GetInt(ctx, redisKey)
	if err != nil {
		// нет ключа: окно ещё не открыто
		return 0, r.limit, nil, nil
	}

	ttl, ttlErr := r.redis.TTL(ctx, redisKey)
	if ttlErr != nil {
		r.warn(ttlErr, redisKey, "failed to get rate limit ttl")
	} else if ttl > 0 {
		tmp := time.Now().Add(ttl)
		resetAt = &tmp
	}

	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count, remaining, resetAt, nil
}

func (r *RateLimiter) warn(err error, key, msg string) {
	if r.log == nil {
		return
	}
	r.log.WithError(err).WithField("key", key).Warn(msg)
}

func (r *RateLimiter) makeKey(key string) string {
	safeKey := strings.ReplaceAll(key, ":", "_")
	return fmt.Sprintf("%s:%s", r.prefix, safeKey)
}

// Limit возвращает лимит для текущего окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включён ли rate limiting.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// defaultLocalKeys ограничивает число ключей локального limiter.
const defaultLocalKeys = 10000

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// localLimiter хранит token bucket на ключ. Ключ, не встречавшийся дольше
// окна, удаляется: его bucket к этому моменту уже полон.
type localLimiter struct {
	mu        sync.Mutex
	limit     int64
	every     rate.Limit
	idle      time.Duration
	maxKeys   int
	lastSweep time.Time
	now       func() time.Time
	limiters  map[string]*localEntry
}

func newLocalLimiter(limit int64, window time.Duration) *localLimiter {
	return &localLimiter{
		limit:    limit,
		every:    rate.Every(window / time.Duration(limit)),
		idle:     window,
		maxKeys:  defaultLocalKeys,
		now:      time.Now,
		limiters: make(map[string]*localEntry),
	}
}

func (l *localLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.limiters[key]; ok {
		e.lastSeen = now
		return e.lim
	}

	if len(l.limiters) >= l.maxKeys || now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	if len(l.limiters) >= l.maxKeys {
		l.evictOldest()
	}

	e := &localEntry{lim: rate.NewLimiter(l.every, int(l.limit)), lastSeen: now}
	l.limiters[key] = e
	return e.lim
}

// sweep удаляет ключи, простаивающие дольше окна. Вызывается под mu.
func (l *localLimiter) sweep(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

func (l *localLimiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range l.limiters {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	delete(l.limiters, oldestKey)
}

func (l *localLimiter) allow(key string) (bool, int64) {
	lim := l.get(key)
	ok := lim.Allow()
	return ok, clampTokens(lim.Tokens())
}

func (l *localLimiter) remaining(key string) int64 {
	return clampTokens(l.get(key).Tokens())
}

func clampTokens(tokens float64) int64 {
	if tokens < 0 {
		return 0
	}
	return int64(tokens)
}

// ExtractClientIP получает IP из заголовков/RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		parts := strings.Split(ip, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
