package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	Frontend FrontendConfig
	Sendgrid SendgridConfig
	Tax      TaxConfig
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
	Env          string `envconfig:"LMS_APP_ENV" required:"true"`
	Port         string `envconfig:"LMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LMS_DB_DSN"`
	Driver string `envconfig:"LMS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LMS_DB_HOST"`
	LegacyPort     int    `envconfig:"LMS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LMS_DB_USER"`
	LegacyPassword string `envconfig:"LMS_DB_PASSWORD"`
	LegacyName     string `envconfig:"LMS_DB_NAME"`
	LegacySSLMode  string `envconfig:"LMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"LMS_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LMS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LMS_REDIS_ADDR"`
	Password     string        `envconfig:"LMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LMS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LMS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LMS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"LMS_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"LMS_RAZORPAY_KEY_SECRET" required:"true"`
	BaseURL   string        `envconfig:"LMS_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	Currency  string        `envconfig:"LMS_RAZORPAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"LMS_RAZORPAY_TIMEOUT" default:"10s"`
}

type FrontendConfig struct {
	SiteURL string `envconfig:"LMS_FRONTEND_SITE_URL" default:"http://localhost:3000"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"LMS_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"LMS_SENDGRID_FROM_EMAIL"`
}

type TaxConfig struct {
	DefaultCountry string `envconfig:"LMS_TAX_DEFAULT_COUNTRY" default:"India"`
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
