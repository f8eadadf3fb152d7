package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Proof        ProofConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Stripe       StripeConfig
	Paystack     PaystackConfig
	Flutterwave  FlutterwaveConfig
	PayPal       PayPalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKYHAVEN_APP_ENV" required:"true"`
	Port         string `envconfig:"SKYHAVEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SKYHAVEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKYHAVEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SKYHAVEN_DB_DSN"`
	Driver string `envconfig:"SKYHAVEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SKYHAVEN_DB_HOST"`
	LegacyPort     int    `envconfig:"SKYHAVEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SKYHAVEN_DB_USER"`
	LegacyPassword string `envconfig:"SKYHAVEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"SKYHAVEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"SKYHAVEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKYHAVEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKYHAVEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKYHAVEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKYHAVEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKYHAVEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKYHAVEN_REDIS_ADDR"`
	Password     string        `envconfig:"SKYHAVEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKYHAVEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKYHAVEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKYHAVEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKYHAVEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKYHAVEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKYHAVEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RateLimitConfig struct {
	RequestsPerWindow int64         `envconfig:"SKYHAVEN_RATE_LIMIT_REQUESTS" default:"120"`
	Window            time.Duration `envconfig:"SKYHAVEN_RATE_LIMIT_WINDOW" default:"1m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SKYHAVEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SKYHAVEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SKYHAVEN_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SKYHAVEN_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SKYHAVEN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SKYHAVEN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SKYHAVEN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"SKYHAVEN_GCS_BUCKET_NAME"`
}

// ProofConfig bounds proof-of-payment uploads.
type ProofConfig struct {
	MaxUploadMB int `envconfig:"SKYHAVEN_PROOF_MAX_UPLOAD_MB" default:"10"`
}

type PubSubConfig struct {
	PaymentTopic        string `envconfig:"SKYHAVEN_PUBSUB_PAYMENT_TOPIC" default:"sky-payment-events"`
	PaymentSubscription string `envconfig:"SKYHAVEN_PUBSUB_PAYMENT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SKYHAVEN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SKYHAVEN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SKYHAVEN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"SKYHAVEN_STRIPE_API_KEY"`
	Env        string `envconfig:"SKYHAVEN_STRIPE_ENV" default:"test"`
	SuccessURL string `envconfig:"SKYHAVEN_STRIPE_SUCCESS_URL"`
	CancelURL  string `envconfig:"SKYHAVEN_STRIPE_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PaystackConfig struct {
	SecretKey   string `envconfig:"SKYHAVEN_PAYSTACK_SECRET_KEY"`
	BaseURL     string `envconfig:"SKYHAVEN_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string `envconfig:"SKYHAVEN_PAYSTACK_CALLBACK_URL"`
}

type FlutterwaveConfig struct {
	SecretKey   string `envconfig:"SKYHAVEN_FLUTTERWAVE_SECRET_KEY"`
	BaseURL     string `envconfig:"SKYHAVEN_FLUTTERWAVE_BASE_URL" default:"https://api.flutterwave.com/v3"`
	RedirectURL string `envconfig:"SKYHAVEN_FLUTTERWAVE_REDIRECT_URL"`
}

type PayPalConfig struct {
	ClientID  string `envconfig:"SKYHAVEN_PAYPAL_CLIENT_ID"`
	Secret    string `envconfig:"SKYHAVEN_PAYPAL_SECRET"`
	BaseURL   string `envconfig:"SKYHAVEN_PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	ReturnURL string `envconfig:"SKYHAVEN_PAYPAL_RETURN_URL"`
	CancelURL string `envconfig:"SKYHAVEN_PAYPAL_CANCEL_URL"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
