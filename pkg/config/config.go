package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Routing      RoutingConfig
	Dispatch     DispatchConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODEXPRESS_APP_ENV" required:"true"`
	Port         string `envconfig:"FOODEXPRESS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FOODEXPRESS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FOODEXPRESS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FOODEXPRESS_SERVICE_KIND" default:"dispatch-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"FOODEXPRESS_DB_DSN"`
	Driver string `envconfig:"FOODEXPRESS_DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`

	LegacyHost     string `envconfig:"FOODEXPRESS_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODEXPRESS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODEXPRESS_DB_USER"`
	LegacyPassword string `envconfig:"FOODEXPRESS_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODEXPRESS_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODEXPRESS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODEXPRESS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODEXPRESS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODEXPRESS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODEXPRESS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODEXPRESS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FOODEXPRESS_REDIS_ADDR"`
	Password     string        `envconfig:"FOODEXPRESS_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODEXPRESS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODEXPRESS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODEXPRESS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODEXPRESS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODEXPRESS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODEXPRESS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RoutingConfig points at the OSRM-compatible routing provider.
type RoutingConfig struct {
	BaseURL string        `envconfig:"FOODEXPRESS_ROUTING_BASE_URL" default:"https://router.project-osrm.org" validate:"url"`
	Timeout time.Duration `envconfig:"FOODEXPRESS_ROUTING_TIMEOUT" default:"10s"`
}

// DispatchConfig tunes the periodic assignment pass.
type DispatchConfig struct {
	PassInterval time.Duration `envconfig:"FOODEXPRESS_DISPATCH_PASS_INTERVAL" default:"30s"`
	LockTTL      time.Duration `envconfig:"FOODEXPRESS_DISPATCH_LOCK_TTL" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FOODEXPRESS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FOODEXPRESS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FOODEXPRESS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"FOODEXPRESS_PUBSUB_NOTIFICATION_TOPIC" default:"fe-notification-events"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FOODEXPRESS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FOODEXPRESS_AUTO_MIGRATE" default:"false"`
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
