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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Quotations   QuotationConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"CLINICORE_APP_ENV" required:"true"`
	Port         string `envconfig:"CLINICORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CLINICORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINICORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CLINICORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CLINICORE_DB_DSN"`
	Driver string `envconfig:"CLINICORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CLINICORE_DB_HOST"`
	LegacyPort     int    `envconfig:"CLINICORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CLINICORE_DB_USER"`
	LegacyPassword string `envconfig:"CLINICORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CLINICORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CLINICORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLINICORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLINICORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLINICORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINICORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINICORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CLINICORE_REDIS_ADDR"`
	Password     string        `envconfig:"CLINICORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLINICORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLINICORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINICORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINICORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINICORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLINICORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// QuotationConfig tunes quotation numbering and validity.
type QuotationConfig struct {
	NumberPrefix        string `envconfig:"CLINICORE_QUOTATION_NUMBER_PREFIX" default:"QT"`
	NumberRetryAttempts int    `envconfig:"CLINICORE_QUOTATION_NUMBER_RETRY_ATTEMPTS" default:"5"`
	DefaultValidityDays int    `envconfig:"CLINICORE_QUOTATION_DEFAULT_VALIDITY_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CLINICORE_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"CLINICORE_CRON_LOCK_TTL" default:"25h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLINICORE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CLINICORE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CLINICORE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CLINICORE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CLINICORE_PUBSUB_DOMAIN_TOPIC" default:"clinicore-domain-events"`
	DomainSubscription string `envconfig:"CLINICORE_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CLINICORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CLINICORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CLINICORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
