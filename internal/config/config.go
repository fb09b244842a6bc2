// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"` // CORS for the browser-facing routes
	SecureCookies  bool          `yaml:"secure_cookies"`
	TrustedProxies []string      `yaml:"trusted_proxies"` // CIDRs allowed to set X-Forwarded-For
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty: in-memory stores
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type WebhookConfig struct {
	Token      string        `yaml:"token"`       // shared secret sent in asaas-access-token
	HMACSecret string        `yaml:"hmac_secret"` // alternative: signed body
	HMACHeader string        `yaml:"hmac_header"`
	LockTTL    time.Duration `yaml:"lock_ttl"`
	Retention  time.Duration `yaml:"retention"` // dedup records older than this are pruned
}

type PaymentConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

type WhatsAppConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Instance string        `yaml:"instance"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	AdminURL       string        `yaml:"admin_url"` // base URL of the hosted auth service
	ServiceRoleKey string        `yaml:"service_role_key"`
	Timeout        time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Endpoint     string   `yaml:"endpoint"`
	Region       string   `yaml:"region"`
	AccessKey    string   `yaml:"access_key"`
	SecretKey    string   `yaml:"secret_key"`
	Buckets      []string `yaml:"buckets"`
	ClientBucket string   `yaml:"client_bucket"`
	UsePathStyle bool     `yaml:"use_path_style"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

type SecurityConfig struct {
	SessionKey string `yaml:"session_key"` // empty: session documents stored in clear
}

type ThrottleConfig struct {
	MinInterval time.Duration `yaml:"min_interval"`
	IdleReset   time.Duration `yaml:"idle_reset"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type CheckoutConfig struct {
	RecoveryWindow time.Duration  `yaml:"recovery_window"`
	PlansFile      string         `yaml:"plans_file"` // empty: embedded catalog
	Throttle       ThrottleConfig `yaml:"throttle"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Notify   NotifyConfig   `yaml:"notify"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, loads .env if present, then lets
// PORTAL_* variables override secrets.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORTAL_DATABASE_URL", &c.Database.URL)
	str("PORTAL_REDIS_URL", &c.Redis.URL)
	str("PORTAL_REDIS_PASSWORD", &c.Redis.Password)
	str("PORTAL_WEBHOOK_TOKEN", &c.Payment.Webhook.Token)
	str("PORTAL_WEBHOOK_HMAC_SECRET", &c.Payment.Webhook.HMACSecret)
	str("PORTAL_WHATSAPP_API_KEY", &c.WhatsApp.APIKey)
	str("PORTAL_JWT_SECRET", &c.Auth.JWTSecret)
	str("PORTAL_SERVICE_ROLE_KEY", &c.Auth.ServiceRoleKey)
	str("PORTAL_STORAGE_ACCESS_KEY", &c.Storage.AccessKey)
	str("PORTAL_STORAGE_SECRET_KEY", &c.Storage.SecretKey)
	str("PORTAL_TELEGRAM_TOKEN", &c.Notify.TelegramToken)
	str("PORTAL_SESSION_KEY", &c.Security.SessionKey)

	if v, ok := lookup("PORTAL_TELEGRAM_CHAT_ID"); ok && v != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			c.Notify.ChatID = id
		}
	}
	if v, ok := lookup("PORTAL_HTTP_PORT"); ok && v != "" {
		if p, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.HTTP.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL)

	if c.Payment.Webhook.HMACHeader == "" {
		c.Payment.Webhook.HMACHeader = "X-Signature"
	}
	if c.Payment.Webhook.LockTTL <= 0 {
		c.Payment.Webhook.LockTTL = 30 * time.Second
	}
	if c.Payment.Webhook.Retention <= 0 {
		c.Payment.Webhook.Retention = 90 * 24 * time.Hour
	}
	if c.WhatsApp.Timeout <= 0 {
		c.WhatsApp.Timeout = 15 * time.Second
	}
	if c.Auth.Timeout <= 0 {
		c.Auth.Timeout = 15 * time.Second
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.ClientBucket == "" && len(c.Storage.Buckets) > 0 {
		c.Storage.ClientBucket = c.Storage.Buckets[0]
	}

	if c.Checkout.RecoveryWindow <= 0 {
		c.Checkout.RecoveryWindow = 30 * time.Minute
	}
	t := &c.Checkout.Throttle
	if t.MinInterval <= 0 {
		t.MinInterval = 15 * time.Second
	}
	if t.IdleReset <= 0 {
		t.IdleReset = 5 * time.Minute
	}
	if t.MaxAttempts <= 0 {
		t.MaxAttempts = 3
	}
}

// Validate performs the minimal checks needed to start serving.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.JWTSecret == "" && !c.Runtime.Dev {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Payment.Webhook.Token == "" && c.Payment.Webhook.HMACSecret == "" {
		return errors.New("payment.webhook.token or payment.webhook.hmac_secret is required")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
