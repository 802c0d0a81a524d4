package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Inventory InventoryConfig
	Numbering NumberingConfig
	RateLimit RateLimitConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"TRADEDOCS_APP_ENV" required:"true"`
	Port         string `envconfig:"TRADEDOCS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRADEDOCS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRADEDOCS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRADEDOCS_DB_DSN"`
	Driver string `envconfig:"TRADEDOCS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRADEDOCS_DB_HOST"`
	LegacyPort     int    `envconfig:"TRADEDOCS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRADEDOCS_DB_USER"`
	LegacyPassword string `envconfig:"TRADEDOCS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRADEDOCS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRADEDOCS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRADEDOCS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRADEDOCS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRADEDOCS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRADEDOCS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRADEDOCS_REDIS_URL"`
	Address      string        `envconfig:"TRADEDOCS_REDIS_ADDR"`
	Password     string        `envconfig:"TRADEDOCS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRADEDOCS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRADEDOCS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRADEDOCS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRADEDOCS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRADEDOCS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRADEDOCS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRADEDOCS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRADEDOCS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRADEDOCS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// InventoryConfig controls ledger posting policy.
type InventoryConfig struct {
	// AllowClamp floors outbound movements at zero stock instead of
	// rejecting them with INSUFFICIENT_STOCK.
	AllowClamp bool `envconfig:"TRADEDOCS_INVENTORY_ALLOW_CLAMP" default:"false"`
}

// NumberingConfig controls human document number generation.
type NumberingConfig struct {
	MaxRetries int `envconfig:"TRADEDOCS_NUMBERING_MAX_RETRIES" default:"5"`
}

type RateLimitConfig struct {
	WriteWindow time.Duration `envconfig:"TRADEDOCS_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteLimit  int           `envconfig:"TRADEDOCS_RATE_LIMIT_WRITE_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRADEDOCS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRADEDOCS_AUTO_MIGRATE" default:"false"`
}

const (
	EnvPrefix = "TRADEDOCS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRADEDOCS_DB_DSN"
	EnvDBHost = "TRADEDOCS_DB_HOST"
	EnvDBUser = "TRADEDOCS_DB_USER"
	EnvDBName = "TRADEDOCS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

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

	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.LegacyUser),
		url.QueryEscape(db.LegacyPassword),
		db.LegacyHost,
		db.LegacyPort,
		db.LegacyName,
		db.LegacySSLMode,
	)
	return nil
}
