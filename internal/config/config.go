package config

import (
	"errors"
	"log/slog"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Common struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	SecureCookie bool     `env:"SECURE_COOKIES" envDefault:"false"`
}

type DBConfig struct {
	URL string `env:"DATABASE_URL,required,notEmpty"`
}

type AuthConfig struct {
	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`
	RefreshSecret string `env:"JWT_REFRESH_SECRET,required,notEmpty"`
}

type StripeConfig struct {
	Key      string `env:"STRIPE_KEY"`
	Currency string `env:"STRIPE_CURRENCY" envDefault:"usd"`
}

type InvoiceConfig struct {
	Dir string `env:"INVOICE_DIR" envDefault:"data/invoices"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

type ESConfig struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX" envDefault:"products"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	TTL      time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
}

type SESConfig struct {
	Region          string `env:"AWS_REGION"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Sender          string `env:"SES_SENDER"`
}

type Config struct {
	Common  Common
	HTTP    HTTPConfig
	DB      DBConfig
	Auth    AuthConfig
	Stripe  StripeConfig
	Invoice InvoiceConfig
	Kafka   KafkaConfig
	ES      ESConfig
	Redis   RedisConfig
	SES     SESConfig
}

// Load reads .env when present and parses the environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not loaded, using process environment", "error", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SES.Sender != "" && cfg.SES.Region == "" {
		return Config{}, errors.New("SES_SENDER is set but AWS_REGION is empty")
	}
	return cfg, nil
}
