package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/payments"
	"storefront/internal/redis"

	"github.com/alicebob/miniredis/v2"
)

// понедельник, 10:00 UTC
var testNow = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "debug", Format: "json"})
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skip: cannot start miniredis in this environment: %v", err)
		}
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	parts := strings.Split(mr.Addr(), ":")
	rdb, err := redis.Connect(&config.RedisConfig{Host: parts[0], Port: parts[1], DB: 0}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to connect redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb, mr
}

type fakeGateway struct {
	calls   int
	amounts []int64
	keys    []string
	err     error
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string, metadata map[string]string) (*payments.PaymentIntent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.amounts = append(g.amounts, amountCents)
	g.keys = append(g.keys, idempotencyKey)
	return &payments.PaymentIntent{
		ID:           "pi_" + idempotencyKey,
		ClientSecret: "secret_" + idempotencyKey,
		Amount:       amountCents,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

func (g *fakeGateway) PublishableKey() string { return "pk_test" }
