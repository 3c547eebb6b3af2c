package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port           string
	GinMode        string
	ServiceName    string
	RequestTimeout time.Duration

	MongoURI string
	MongoDB  string

	// RedisAddr vacío usa la caché en memoria
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// KafkaBrokers vacío desactiva la publicación de eventos
	KafkaBrokers []string
	OrderTopic   string

	OTLPEndpoint string

	DefaultPageSize int
	MaxPageSize     int

	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func LoadConfig() (*Config, error) {
	// Solo cargar .env en desarrollo local
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Warn("error loading .env file", "error", err)
		} else {
			slog.Info(".env file loaded")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "release"),
		ServiceName:   getEnv("SERVICE_NAME", "storefront-api"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "storefront"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
		OrderTopic:    getEnv("ORDER_TOPIC", "order.placed"),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DefaultPageSize, err = intEnv("DEFAULT_PAGE_SIZE", 12); err != nil {
		return nil, err
	}
	if cfg.MaxPageSize, err = intEnv("MAX_PAGE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.TaxRate, err = decimalEnv("TAX_RATE", "0.08"); err != nil {
		return nil, err
	}
	if cfg.FreeShippingThreshold, err = decimalEnv("FREE_SHIPPING_THRESHOLD", "50.00"); err != nil {
		return nil, err
	}
	if cfg.ShippingFee, err = decimalEnv("SHIPPING_FEE", "9.99"); err != nil {
		return nil, err
	}

	if cfg.MaxPageSize < 1 {
		return nil, fmt.Errorf("MAX_PAGE_SIZE must be at least 1, got %d", cfg.MaxPageSize)
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return nil, fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and %d, got %d", cfg.MaxPageSize, cfg.DefaultPageSize)
	}
	if cfg.TaxRate.IsNegative() || cfg.ShippingFee.IsNegative() || cfg.FreeShippingThreshold.IsNegative() {
		return nil, fmt.Errorf("pricing settings cannot be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func decimalEnv(key, fallback string) (decimal.Decimal, error) {
	raw := getEnv(key, fallback)
	if raw == "" {
		raw = fallback
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
