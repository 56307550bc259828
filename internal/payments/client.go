// Package payments — клиент Stripe на базе stripe-go.
// Клиент создаётся один раз при старте процесса и передаётся зависимостям явно.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

const defaultTimeout = 10 * time.Second

// ErrMissingPublishableKey возвращается NewClient без publishable key.
var ErrMissingPublishableKey = errors.New("payments: publishable key is required")

// PaymentIntent — созданное намерение платежа.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Client обращается к API Stripe.
type Client struct {
	publishableKey string
	secretKey      string
	currency       string
	api            *client.API
	log            *logger.Logger
}

type clientOptions struct {
	httpClient *http.Client
	retries    int64
}

// Option настраивает клиент.
type Option func(*clientOptions)

// WithHTTPClient подменяет HTTP-клиент бэкенда stripe-go.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithMaxNetworkRetries задаёт число повторов stripe-go при сетевых ошибках.
func WithMaxNetworkRetries(n int64) Option {
	return func(o *clientOptions) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// NewClient проверяет конфигурацию и создаёт клиент.
func NewClient(cfg *config.PaymentsConfig, log *logger.Logger, opts ...Option) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.PublishableKey) == "" {
		return nil, ErrMissingPublishableKey
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	o := clientOptions{httpClient: &http.Client{Timeout: timeout}, retries: 2}
	for _, opt := range opts {
		opt(&o)
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        o.httpClient,
		MaxNetworkRetries: stripe.Int64(o.retries),
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		backendCfg.URL = stripe.String(base)
	}
	if log != nil {
		backendCfg.LeveledLogger = log.Logger
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	c := &Client{
		publishableKey: cfg.PublishableKey,
		secretKey:      cfg.SecretKey,
		currency:       currency,
		api:            api,
		log:            log,
	}
	if c.secretKey == "" && log != nil {
		log.Warn("Payments secret key is not set, payment intents are disabled")
	}
	return c, nil
}

// PublishableKey возвращает публичный ключ для клиентской части.
func (c *Client) PublishableKey() string {
	return c.publishableKey
}

// Currency возвращает валюту расчётов по умолчанию.
func (c *Client) Currency() string {
	return c.currency
}

// CreatePaymentIntent создаёт намерение платежа на amountCents в минимальных
// единицах валюты. idempotencyKey защищает от повторного списания при ретраях.
func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error) {
	if c.secretKey == "" {
		return nil, apperror.Unavailable("payments are not configured", nil)
	}
	if amountCents <= 0 {
		return nil, apperror.Validation("payment amount must be positive", nil)
	}
	if currency == "" {
		currency = c.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.AddMetadata(k, metadata[k])
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapError(err)
	}

	intent := &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
	if c.log != nil {
		c.log.WithFields(map[string]interface{}{
			"payment_intent": intent.ID,
			"amount":         intent.Amount,
			"currency":       intent.Currency,
		}).Info("Payment intent created")
	}
	return intent, nil
}

// mapError переводит ошибки stripe-go в виды apperror.
func mapError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return apperror.Unavailable("payment provider is unavailable", err)
	}

	switch {
	case se.HTTPStatusCode >= http.StatusInternalServerError,
		se.HTTPStatusCode == http.StatusTooManyRequests,
		se.Type == stripe.ErrorTypeAPI:
		return apperror.Unavailable("payment provider is unavailable", se)
	case se.Type == stripe.ErrorTypeCard,
		se.HTTPStatusCode == http.StatusPaymentRequired,
		se.HTTPStatusCode == http.StatusBadRequest:
		return apperror.BadRequest(se.Msg, se)
	case se.Type == stripe.ErrorTypeIdempotency:
		return apperror.Conflict(se.Msg, se)
	default:
		return fmt.Errorf("payment provider error (status %d): %w", se.HTTPStatusCode, se)
	}
}

// ToCents переводит сумму в минимальные единицы валюты с округлением.
func ToCents(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	return int64(amount*100 + 0.5)
}
