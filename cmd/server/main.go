package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/i18n"
	"storefront/internal/kafka"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/redis"
	"storefront/internal/services"
	"storefront/internal/shipping"
	"storefront/internal/store"
	"storefront/internal/store/memory"
	"storefront/internal/store/postgres"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	newPayments      = payments.NewClient
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	store    store.Store
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	router   http.Handler
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting storefront server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	app.close()
	app.log.Info("Server exited")
}

// close освобождает внешние подключения; отключённые компоненты пропускаются.
func (a *application) close() {
	if a.consumer != nil {
		_ = a.consumer.Stop()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	if err := cfg.LoadShippingCatalog(); err != nil {
		return nil, fmt.Errorf("shipping catalog: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	app := &application{cfg: cfg, log: log}
	fail := func(err error) (*application, error) {
		app.close()
		return nil, err
	}

	paymentsClient, err := newPayments(&cfg.Payments, log)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}

	catalog, err := shipping.FromConfig(&cfg.Shipping)
	if err != nil {
		return nil, fmt.Errorf("shipping catalog: %w", err)
	}

	if err := app.openStore(); err != nil {
		return fail(err)
	}

	if cfg.Redis.Enabled {
		app.redis, err = redisConnect(&cfg.Redis, log)
		if err != nil {
			return fail(fmt.Errorf("redis connect: %w", err))
		}
	}

	// Интерфейс заполняется только настоящим продюсером, чтобы не получить
	// typed nil в обработчиках.
	var producer handlers.EventProducer
	if cfg.Kafka.Enabled {
		app.producer, err = newKafkaProducer(&cfg.Kafka, log)
		if err != nil {
			return fail(fmt.Errorf("kafka producer: %w", err))
		}
		producer = app.producer

		app.consumer, err = newKafkaConsumer(&cfg.Kafka, log)
		if err != nil {
			return fail(fmt.Errorf("kafka consumer: %w", err))
		}
	}

	tr := newTranslator(&cfg.Locale)
	st := app.store

	shippingService := services.NewShippingService(catalog, app.redis, tr, log, time.Duration(cfg.Shipping.CacheTTLMinutes)*time.Minute)
	promoService := services.NewPromoService(st, tr, log, cfg.Payments.Currency)
	couponService := services.NewCouponService(st, tr, log, cfg.Payments.Currency)
	giftCardService := services.NewGiftCardService(st, tr, log, cfg.Payments.Currency)
	creditService := services.NewStoreCreditService(st, log)
	bannerService := services.NewBannerService(st, app.redis, log, 0)
	reviewService := services.NewReviewService(st, tr, log)
	analyticsService := services.NewAnalyticsService(st, app.redis, log, &cfg.Analytics)
	rateLimiter := services.NewRateLimiter(app.redis, log, &cfg.RateLimit)
	checkoutService := services.NewCheckoutService(services.CheckoutDeps{
		Store:       st,
		Shipping:    shippingService,
		Promos:      promoService,
		Coupons:     couponService,
		GiftCards:   giftCardService,
		StoreCredit: creditService,
		Payments:    paymentsClient,
		Translator:  tr,
		Log:         log,
		Currency:    cfg.Payments.Currency,
	})

	var redisHealth handlers.RedisHealth
	if app.redis != nil {
		redisHealth = app.redis
	}
	var brokers []string
	if cfg.Kafka.Enabled {
		brokers = cfg.Kafka.Brokers
	}

	h := handlers.Handlers{
		Health:      handlers.NewHealthHandler(st, redisHealth, brokers, kafkaHealthCheck),
		RateLimit:   handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit),
		Shipping:    handlers.NewShippingHandler(shippingService, log),
		Coupons:     handlers.NewCouponHandler(couponService, producer, log),
		Banners:     handlers.NewBannerHandler(bannerService, log),
		Promo:       handlers.NewPromoHandler(promoService, log),
		GiftCards:   handlers.NewGiftCardHandler(giftCardService, producer, log),
		StoreCredit: handlers.NewStoreCreditHandler(creditService, producer, log),
		Reviews:     handlers.NewReviewHandler(reviewService, log),
		Checkout:    handlers.NewCheckoutHandler(checkoutService, producer, log),
		Analytics:   handlers.NewAnalyticsHandler(analyticsService, log, &cfg.Analytics),
	}

	if app.consumer != nil {
		registerEventHandlers(app.consumer, analyticsService, bannerService)
		if err := app.consumer.Start(); err != nil {
			return fail(fmt.Errorf("kafka consumer start: %w", err))
		}
	}

	app.router = handlers.NewRouter(h, handlers.RouterOptions{
		Limiter:      rateLimiter,
		AllowOrigins: cfg.Server.AllowOrigins,
		Log:          log,
	})
	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return app, nil
}

// openStore выбирает хранилище по DB_DRIVER.
func (a *application) openStore() error {
	if a.cfg.Database.Driver == "memory" {
		a.log.Warn("Using in-memory store, data is lost on restart")
		a.store = memory.New()
		return nil
	}

	db, err := dbConnect(&a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	a.db = db

	pg := postgres.New(db, a.log)
	if a.cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
	}
	a.store = pg
	return nil
}

// newTranslator оставляет в каталоге только поддерживаемые локали.
func newTranslator(cfg *config.LocaleConfig) *i18n.Translator {
	full := i18n.DefaultCatalog()
	if len(cfg.Supported) == 0 {
		return i18n.New(i18n.Locale(cfg.Default), full)
	}

	catalog := make(i18n.Catalog, len(cfg.Supported))
	for _, loc := range cfg.Supported {
		if messages, ok := full[i18n.Locale(loc)]; ok {
			catalog[i18n.Locale(loc)] = messages
		}
	}
	return i18n.New(i18n.Locale(cfg.Default), catalog)
}

// registerEventHandlers сбрасывает кэши при событиях, меняющих их данные.
func registerEventHandlers(consumer *kafka.Consumer, analytics *services.AnalyticsService, banners *services.BannerService) {
	consumer.RegisterInvalidator(models.EventTypeOrderPlaced, analytics)
	consumer.RegisterInvalidator(models.EventTypeBannerUpdated, banners)
}
