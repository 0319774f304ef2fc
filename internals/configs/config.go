package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

/* =======================
   Gateway mode & provider
======================= */

type GatewayMode string

const (
	GatewayModeLive      GatewayMode = "live"
	GatewayModeSimulated GatewayMode = "simulated"
)

type GatewayProvider string

const (
	GatewayProviderPaystack GatewayProvider = "paystack"
	GatewayProviderMidtrans GatewayProvider = "midtrans"
)

/* =======================
   Config
======================= */

type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
	// AppName dipakai sebagai application_name di koneksi postgres
	AppName          string
	StatementTimeout time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
}

type GatewayConfig struct {
	Mode     GatewayMode
	Provider GatewayProvider

	PaystackSecretKey     string
	PaystackBaseURL       string
	PaystackWebhookSecret string

	MidtransServerKey string
	MidtransUseProd   bool

	// WebhookAllowUnsigned: developer-only escape hatch, accept webhooks when no secret is set.
	WebhookAllowUnsigned bool
	Timeout              time.Duration
}

// HasLiveCredentials reports whether any live gateway secret is present.
func (g GatewayConfig) HasLiveCredentials() bool {
	switch g.Provider {
	case GatewayProviderMidtrans:
		return strings.TrimSpace(g.MidtransServerKey) != ""
	default:
		return strings.TrimSpace(g.PaystackSecretKey) != ""
	}
}

// WebhookSecret is the shared secret used for HMAC verification. Paystack signs
// webhooks with the secret key unless a dedicated one is configured.
func (g GatewayConfig) WebhookSecret() string {
	if s := strings.TrimSpace(g.PaystackWebhookSecret); s != "" {
		return s
	}
	if g.Provider == GatewayProviderMidtrans {
		return strings.TrimSpace(g.MidtransServerKey)
	}
	return strings.TrimSpace(g.PaystackSecretKey)
}

type Config struct {
	AppEnv        string
	Port          string
	PublicBaseURL string

	JWTSecret string
	RedisURL  string

	DefaultCurrency string

	ReconcileCron       string
	ReconcileStaleAfter time.Duration
	// ReconcileAbandonAfter: entry in-flight lebih tua dari ini diputus failed
	ReconcileAbandonAfter time.Duration

	Database DatabaseConfig
	Gateway  GatewayConfig
	Log      LogConfig
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Info().Msg("no .env file found, using system environment")
		} else {
			log.Info().Msg(".env file loaded")
		}
	} else {
		log.Info().Msg("running in Railway, using system environment")
	}
}

// Load membaca seluruh konfigurasi dari ENV lalu memvalidasinya.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          GetEnv("APP_ENV", "development"),
		Port:            GetEnv("PORT", "3000"),
		PublicBaseURL:   strings.TrimRight(GetEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		JWTSecret:       GetEnv("JWT_SECRET"),
		RedisURL:        GetEnv("REDIS_URL"),
		DefaultCurrency: strings.ToUpper(GetEnv("DEFAULT_CURRENCY", "NGN")),

		ReconcileCron:         GetEnv("RECONCILE_CRON"),
		ReconcileStaleAfter:   GetEnvDuration("RECONCILE_STALE_AFTER", 30*time.Minute),
		ReconcileAbandonAfter: GetEnvDuration("RECONCILE_ABANDON_AFTER", 24*time.Hour),

		Database: DatabaseConfig{
			User:             GetEnv("DB_USER"),
			Password:         GetEnv("DB_PASSWORD"),
			Host:             GetEnv("DB_HOST", "localhost"),
			Port:             GetEnv("DB_PORT", "5432"),
			Name:             GetEnv("DB_NAME"),
			SSLMode:          GetEnv("DB_SSLMODE", "require"),
			AppName:          GetEnv("DB_APP_NAME", "napps"),
			StatementTimeout: GetEnvDuration("DB_STATEMENT_TIMEOUT", 3*time.Second),
			MaxOpenConns:     GetEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     GetEnvInt("DB_MAX_IDLE_CONNS", 10),
		},

		Gateway: GatewayConfig{
			// tanpa default: mode harus dipilih eksplisit
			Mode:                  GatewayMode(strings.ToLower(GetEnv("GATEWAY_MODE"))),
			Provider:              GatewayProvider(strings.ToLower(GetEnv("GATEWAY_PROVIDER", string(GatewayProviderPaystack)))),
			PaystackSecretKey:     GetEnv("PAYSTACK_SECRET_KEY"),
			PaystackBaseURL:       strings.TrimRight(GetEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
			PaystackWebhookSecret: GetEnv("PAYSTACK_WEBHOOK_SECRET"),
			MidtransServerKey:     GetEnv("MIDTRANS_SERVER_KEY"),
			MidtransUseProd:       GetEnvBool("MIDTRANS_USE_PROD", false),
			WebhookAllowUnsigned:  GetEnvBool("WEBHOOK_ALLOW_UNSIGNED", false),
			Timeout:               GetEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},

		Log: LogConfig{
			Level:      GetEnv("LOG_LEVEL", "info"),
			Format:     GetEnv("LOG_FORMAT", "console"),
			TimeFormat: GetEnv("LOG_TIME_FORMAT", time.RFC3339),
			Output:     GetEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Gateway.Mode {
	case GatewayModeLive:
		if !c.Gateway.HasLiveCredentials() {
			return fmt.Errorf("GATEWAY_MODE=live requires credentials for provider %q", c.Gateway.Provider)
		}
	case GatewayModeSimulated:
		// simulasi tidak boleh jalan kalau kredensial live ada
		if c.Gateway.HasLiveCredentials() {
			return fmt.Errorf("GATEWAY_MODE=simulated refused: live credentials for %q are present", c.Gateway.Provider)
		}
		if c.IsProduction() {
			return fmt.Errorf("GATEWAY_MODE=simulated cannot be used when APP_ENV=production")
		}
	case "":
		return fmt.Errorf("GATEWAY_MODE is required (live or simulated)")
	default:
		return fmt.Errorf("GATEWAY_MODE must be live or simulated, got %q", c.Gateway.Mode)
	}

	switch c.Gateway.Provider {
	case GatewayProviderPaystack, GatewayProviderMidtrans:
	default:
		return fmt.Errorf("GATEWAY_PROVIDER must be paystack or midtrans, got %q", c.Gateway.Provider)
	}

	if c.Gateway.WebhookAllowUnsigned && c.IsProduction() {
		return fmt.Errorf("WEBHOOK_ALLOW_UNSIGNED cannot be enabled when APP_ENV=production")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be an ISO 4217 code, got %q", c.DefaultCurrency)
	}
	return nil
}

/* =======================
   ENV getters
======================= */

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
