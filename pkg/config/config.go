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
	JWT          JWTConfig
	Payments     PaymentsConfig
	Distribution DistributionConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"REVSHARE_APP_ENV" required:"true"`
	Port         string `envconfig:"REVSHARE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REVSHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REVSHARE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REVSHARE_DB_DSN"`
	Driver string `envconfig:"REVSHARE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REVSHARE_DB_HOST"`
	LegacyPort     int    `envconfig:"REVSHARE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REVSHARE_DB_USER"`
	LegacyPassword string `envconfig:"REVSHARE_DB_PASSWORD"`
	LegacyName     string `envconfig:"REVSHARE_DB_NAME"`
	LegacySSLMode  string `envconfig:"REVSHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REVSHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REVSHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REVSHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REVSHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REVSHARE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REVSHARE_REDIS_ADDR"`
	Password     string        `envconfig:"REVSHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"REVSHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REVSHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REVSHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REVSHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REVSHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REVSHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REVSHARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REVSHARE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"REVSHARE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// PaymentsConfig selects the payment provider implementation. The engines
// receive the provider by injection; nothing reads this at call time.
type PaymentsConfig struct {
	Mode            string        `envconfig:"REVSHARE_PAYMENTS_MODE" default:"simulated"`
	PlatformFeeBps  int           `envconfig:"REVSHARE_PAYMENTS_PLATFORM_FEE_BPS" default:"200"`
	ProviderAPIKey  string        `envconfig:"REVSHARE_PAYMENTS_API_KEY"`
	ProviderTimeout time.Duration `envconfig:"REVSHARE_PAYMENTS_TIMEOUT" default:"10s"`
}

func (p PaymentsConfig) IsSimulated() bool {
	return !strings.EqualFold(p.Mode, PaymentsModeLive)
}

type DistributionConfig struct {
	LockTTL time.Duration `envconfig:"REVSHARE_DISTRIBUTION_LOCK_TTL" default:"2m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"REVSHARE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"REVSHARE_AUTO_MIGRATE" default:"false"`
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
