package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/kafka"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/store/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Database.Driver = "memory"
	cfg.Redis.Enabled = false
	cfg.Kafka.Enabled = false
	cfg.Payments.PublishableKey = "pk_test_123"
	cfg.Logger.Level = "error"
	return cfg
}

func stubConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	orig := loadConfig
	loadConfig = func() *config.Config { return cfg }
	t.Cleanup(func() { loadConfig = orig })
}

func TestBuildApplication_MemoryStore(t *testing.T) {
	stubConfig(t, testConfig())

	app, err := buildApplication()
	require.NoError(t, err)
	defer app.close()

	assert.Nil(t, app.db)
	assert.Nil(t, app.redis)
	assert.Nil(t, app.producer)

	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "disabled")

	rr = httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/checkout/config", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pk_test_123")
}

func TestBuildApplication_MissingPublishableKey(t *testing.T) {
	cfg := testConfig()
	cfg.Payments.PublishableKey = ""
	stubConfig(t, cfg)

	_, err := buildApplication()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENTS_PUBLISHABLE_KEY")
}

func TestBuildApplication_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = host
	cfg.Redis.Port = port
	stubConfig(t, cfg)

	app, err := buildApplication()
	require.NoError(t, err)
	defer app.close()

	require.NotNil(t, app.redis)
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/shipping/options?subtotal=10", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBuildApplication_KafkaProducerError(t *testing.T) {
	cfg := testConfig()
	cfg.Kafka.Enabled = true
	stubConfig(t, cfg)

	orig := newKafkaProducer
	newKafkaProducer = func(*config.KafkaConfig, *logger.Logger) (*kafka.Producer, error) {
		return nil, errors.New("brokers unreachable")
	}
	t.Cleanup(func() { newKafkaProducer = orig })

	_, err := buildApplication()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka producer")
}

func TestBuildApplication_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "mysql"
	stubConfig(t, cfg)

	_, err := buildApplication()
	assert.Error(t, err)
}

func TestNewTranslator_FiltersUnsupportedLocales(t *testing.T) {
	tr := newTranslator(&config.LocaleConfig{Default: "en", Supported: []string{"en"}})
	assert.Equal(t, "en", string(tr.Resolve("es-MX")))
}

func TestRegisterEventHandlers(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	st := memory.New()
	consumer := kafka.NewTestConsumer(nil, log)

	registerEventHandlers(consumer,
		services.NewAnalyticsService(st, nil, log, nil),
		services.NewBannerService(st, nil, log, 0))

	assert.Equal(t, 2, consumer.HandlerCount())
	for _, et := range []models.EventType{models.EventTypeOrderPlaced, models.EventTypeBannerUpdated} {
		h := consumer.Handler(et)
		require.NotNil(t, h, et)
		assert.NoError(t, h(context.Background(), &models.Event{Type: et}))
	}
	assert.Nil(t, consumer.Handler(models.EventTypeGiftCardIssued))
}
