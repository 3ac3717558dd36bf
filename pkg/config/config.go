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
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Split        SplitConfig
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
	Env          string `envconfig:"ORDERSPLIT_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERSPLIT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERSPLIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERSPLIT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERSPLIT_SERVICE_KIND" default:"splitter"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERSPLIT_DB_DSN"`
	Driver string `envconfig:"ORDERSPLIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERSPLIT_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERSPLIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERSPLIT_DB_USER"`
	LegacyPassword string `envconfig:"ORDERSPLIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERSPLIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERSPLIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERSPLIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERSPLIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERSPLIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERSPLIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERSPLIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERSPLIT_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERSPLIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERSPLIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERSPLIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERSPLIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERSPLIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERSPLIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERSPLIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERSPLIT_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"ORDERSPLIT_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDERSPLIT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ORDERSPLIT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDERSPLIT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ORDERSPLIT_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"ORDERSPLIT_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
	// CommandsSubscription feeds the split worker. Only the worker requires it.
	CommandsSubscription string `envconfig:"ORDERSPLIT_PUBSUB_COMMANDS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ORDERSPLIT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ORDERSPLIT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ORDERSPLIT_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"ORDERSPLIT_OUTBOX_RETENTION_DAYS" default:"30"`
}

type SplitConfig struct {
	// UnknownVendorName labels child orders whose line items resolve to no
	// active vendor.
	UnknownVendorName string        `envconfig:"ORDERSPLIT_UNKNOWN_VENDOR_NAME" default:"Unknown Vendor"`
	LockTTL           time.Duration `envconfig:"ORDERSPLIT_STATUS_LOCK_TTL" default:"30s"`
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
