package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"PORT"`
	PublicURL      string        `yaml:"public_url" env:"APP_URL"` // used in email links
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`   // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"` // json|console
	Sampling bool   `yaml:"sampling"`                // enable sampling in prod
}

type AdminConfig struct {
	APIKey string `yaml:"api_key" env:"ADMIN_API_KEY"`
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
	CookieName string `yaml:"cookie_name"`
}

type DatabaseConfig struct {
	URL         string        `yaml:"url" env:"DATABASE_URL"`
	MaxConns    int32         `yaml:"max_conns"`
	MaxConnIdle time.Duration `yaml:"max_conn_idle"`
	AutoMigrate bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

type RedisConfig struct {
	URL      string        `yaml:"url" env:"REDIS_URL"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PaymentConfig holds gateway settings. Credentials left empty here fall back
// to the payment_config table.
type PaymentConfig struct {
	Provider        string        `yaml:"provider" env:"PAYMENT_PROVIDER"` // razorpay|noop
	KeyID           string        `yaml:"key_id" env:"RAZORPAY_KEY_ID"`
	KeySecret       string        `yaml:"key_secret" env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret   string        `yaml:"webhook_secret" env:"RAZORPAY_WEBHOOK_SECRET"`
	BaseURL         string        `yaml:"base_url"`
	Currency        string        `yaml:"currency"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	PendingTTL      time.Duration `yaml:"pending_ttl"` // 0 disables the reaper
	ReaperInterval  time.Duration `yaml:"reaper_interval"`
	InvoiceTemplate string        `yaml:"invoice_template"`
}

type EmailConfig struct {
	Host      string `yaml:"host" env:"SMTP_HOST"`
	Port      int    `yaml:"port" env:"SMTP_PORT"`
	Username  string `yaml:"username" env:"SMTP_USER"`
	Password  string `yaml:"password" env:"SMTP_PASS"`
	From      string `yaml:"from" env:"EMAIL_FROM"`
	StoreName string `yaml:"store_name"`
}

func (c EmailConfig) Enabled() bool { return c.Host != "" && c.From != "" }

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID int64  `yaml:"admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`
}

type PromoConfig struct {
	ValidateLimit  int           `yaml:"validate_limit"`
	ValidateWindow time.Duration `yaml:"validate_window"`
}

type WorkerConfig struct {
	Workers int `yaml:"workers"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Promo    PromoConfig    `yaml:"promo"`
	Worker   WorkerConfig   `yaml:"worker"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads -config and -dev from the command line.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()
	return Load(configPath, dev)
}

// Load merges, in increasing priority: defaults, the YAML file, .env and the process environment.
func Load(configPath string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Payment.Provider != "razorpay" && cfg.Payment.Provider != "noop" {
		return nil, fmt.Errorf("payment.provider %q is not supported", cfg.Payment.Provider)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.PublicURL == "" {
		cfg.HTTP.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
	}
	cfg.HTTP.ReadTimeout = orDefault(cfg.HTTP.ReadTimeout, 10*time.Second)
	cfg.HTTP.WriteTimeout = orDefault(cfg.HTTP.WriteTimeout, 30*time.Second)
	cfg.HTTP.RequestTimeout = orDefault(cfg.HTTP.RequestTimeout, 20*time.Second)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "session"
	}
	cfg.Redis.TTL = orDefault(cfg.Redis.TTL, 10*time.Minute)

	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = "razorpay"
	}
	if cfg.Payment.BaseURL == "" {
		cfg.Payment.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "INR"
	}
	cfg.Payment.HTTPTimeout = orDefault(cfg.Payment.HTTPTimeout, 15*time.Second)
	cfg.Payment.ReaperInterval = orDefault(cfg.Payment.ReaperInterval, 10*time.Minute)
	if cfg.Payment.InvoiceTemplate == "" {
		cfg.Payment.InvoiceTemplate = "INV-{YYYY}{MM}{DD}-{SEQ6}"
	}

	if cfg.Email.Port <= 0 {
		cfg.Email.Port = 587
	}
	if cfg.Email.StoreName == "" {
		cfg.Email.StoreName = "Digital Store"
	}
	if cfg.Promo.ValidateLimit <= 0 {
		cfg.Promo.ValidateLimit = 20
	}
	cfg.Promo.ValidateWindow = orDefault(cfg.Promo.ValidateWindow, time.Minute)
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 4
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
