package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Shipping  ShippingConfig  `json:"shipping"`
	Analytics AnalyticsConfig `json:"analytics"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Payments  PaymentsConfig  `json:"payments"`
	Locale    LocaleConfig    `json:"locale"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string   `json:"port"`
	Host         string   `json:"host"`
	ReadTimeout  int      `json:"read_timeout"`
	WriteTimeout int      `json:"write_timeout"`
	AllowOrigins []string `json:"allow_origins"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	// Driver выбирает хранилище: postgres или memory.
	Driver       string `json:"driver"`
	AutoMigrate  bool   `json:"auto_migrate"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Orders     string `json:"orders"`
	Promotions string `json:"promotions"`
	GiftCards  string `json:"gift_cards"`
	Content    string `json:"content"`
}

// All возвращает непустые топики без повторов.
func (t Topics) All() []string {
	seen := make(map[string]bool)
	var out []string
	for _, topic := range []string{t.Orders, t.Promotions, t.GiftCards, t.Content} {
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		out = append(out, topic)
	}
	return out
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// ShippingConfig описывает каталог доставки и порог бесплатной доставки.
type ShippingConfig struct {
	FreeThreshold   float64                `json:"free_threshold" yaml:"free_threshold"`
	Location        string                 `json:"location" yaml:"location"`
	CatalogFile     string                 `json:"catalog_file" yaml:"-"`
	CacheTTLMinutes int                    `json:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
	Options         []ShippingOptionConfig `json:"options,omitempty" yaml:"options"`
}

// ShippingOptionConfig задаёт одну позицию каталога доставки.
type ShippingOptionConfig struct {
	Type    string  `json:"type" yaml:"type"`
	Label   string  `json:"label" yaml:"label"`
	Price   float64 `json:"price" yaml:"price"`
	MinDays int     `json:"min_days" yaml:"min_days"`
	MaxDays int     `json:"max_days" yaml:"max_days"`
	Cutoff  string  `json:"cutoff,omitempty" yaml:"cutoff"`
}

// AnalyticsConfig хранит настройки аналитики
type AnalyticsConfig struct {
	CacheTTLMinutes       int `json:"cache_ttl_minutes"`
	MaxRangeDays          int `json:"max_range_days"`
	DefaultTopLimit       int `json:"default_top_limit"`
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
	// LocalFallback включает in-process лимитер, когда Redis недоступен.
	LocalFallback bool `json:"local_fallback"`
}

// PaymentsConfig хранит ключи платёжного провайдера.
type PaymentsConfig struct {
	PublishableKey string `json:"publishable_key"`
	SecretKey      string `json:"-"`
	BaseURL        string `json:"base_url"`
	Currency       string `json:"currency"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// LocaleConfig задаёт язык по умолчанию для сообщений и форматирования.
type LocaleConfig struct {
	Default   string   `json:"default"`
	Supported []string `json:"supported"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			AllowOrigins: getEnvAsList("SERVER_ALLOW_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "storefront"),
			Password:     getEnv("DB_PASSWORD", "storefront"),
			DBName:       getEnv("DB_NAME", "storefront"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", true),
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			GroupID: getEnv("KAFKA_GROUP_ID", "storefront"),
			Topics: Topics{
				Orders:     getEnv("KAFKA_TOPIC_ORDERS", "orders"),
				Promotions: getEnv("KAFKA_TOPIC_PROMOTIONS", "promotions"),
				GiftCards:  getEnv("KAFKA_TOPIC_GIFT_CARDS", "gift-cards"),
				Content:    getEnv("KAFKA_TOPIC_CONTENT", "content"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Shipping: ShippingConfig{
			FreeThreshold:   getEnvAsFloat("SHIPPING_FREE_THRESHOLD", 50.0),
			Location:        getEnv("SHIPPING_LOCATION", "UTC"),
			CatalogFile:     getEnv("SHIPPING_CATALOG_FILE", ""),
			CacheTTLMinutes: getEnvAsInt("SHIPPING_CACHE_TTL_MINUTES", 5),
		},
		Analytics: AnalyticsConfig{
			CacheTTLMinutes:       getEnvAsInt("ANALYTICS_CACHE_TTL_MINUTES", 10),
			MaxRangeDays:          getEnvAsInt("ANALYTICS_MAX_RANGE_DAYS", 365),
			DefaultTopLimit:       getEnvAsInt("ANALYTICS_DEFAULT_TOP_LIMIT", 10),
			RequestTimeoutSeconds: getEnvAsInt("ANALYTICS_REQUEST_TIMEOUT_SECONDS", 5),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
			LocalFallback: getEnvAsBool("RATE_LIMIT_LOCAL_FALLBACK", true),
		},
		Payments: PaymentsConfig{
			PublishableKey: getEnv("PAYMENTS_PUBLISHABLE_KEY", ""),
			SecretKey:      getEnv("PAYMENTS_SECRET_KEY", ""),
			BaseURL:        getEnv("PAYMENTS_BASE_URL", "https://api.stripe.com"),
			Currency:       getEnv("PAYMENTS_CURRENCY", "usd"),
			TimeoutSeconds: getEnvAsInt("PAYMENTS_TIMEOUT_SECONDS", 10),
		},
		Locale: LocaleConfig{
			Default:   getEnv("LOCALE_DEFAULT", "en"),
			Supported: getEnvAsList("LOCALE_SUPPORTED", []string{"en", "es", "fr"}),
		},
	}
	return cfg
}

// LoadShippingCatalog читает YAML-файл каталога доставки и переопределяет
// значения из окружения. Пустой путь ничего не меняет.
func (c *Config) LoadShippingCatalog() error {
	path := c.Shipping.CatalogFile
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read shipping catalog %s: %w", path, err)
	}

	var file ShippingConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse shipping catalog %s: %w", path, err)
	}

	if file.FreeThreshold > 0 {
		c.Shipping.FreeThreshold = file.FreeThreshold
	}
	if file.Location != "" {
		c.Shipping.Location = file.Location
	}
	if file.CacheTTLMinutes > 0 {
		c.Shipping.CacheTTLMinutes = file.CacheTTLMinutes
	}
	if len(file.Options) > 0 {
		c.Shipping.Options = file.Options
	}
	return nil
}

// Validate проверяет обязательные параметры при старте процесса.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server port is required")
	}
	if strings.TrimSpace(c.Payments.PublishableKey) == "" {
		return fmt.Errorf("PAYMENTS_PUBLISHABLE_KEY is required")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Shipping.FreeThreshold <= 0 {
		return fmt.Errorf("shipping free threshold must be positive")
	}
	if _, err := time.LoadLocation(c.Shipping.Location); err != nil {
		return fmt.Errorf("invalid shipping location %q: %w", c.Shipping.Location, err)
	}
	for _, opt := range c.Shipping.Options {
		if opt.MinDays < 0 || opt.MaxDays < opt.MinDays {
			return fmt.Errorf("shipping option %q has invalid day range", opt.Type)
		}
	}
	supported := false
	for _, l := range c.Locale.Supported {
		if strings.EqualFold(l, c.Locale.Default) {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("default locale %q is not in supported locales", c.Locale.Default)
	}
	return nil
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 с значением по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}

// getEnvAsList разбивает значение по запятым, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
