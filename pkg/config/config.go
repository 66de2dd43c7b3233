package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "FARMLEDGER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQL    = "sql"

	EnvAppEnv       = "FARMLEDGER_APP_ENV"
	EnvStoreBackend = "FARMLEDGER_STORE_BACKEND"
	EnvAutoMigrate  = "FARMLEDGER_AUTO_MIGRATE"
	EnvDBDSN        = "FARMLEDGER_DB_DSN"
	EnvDBDriver     = "FARMLEDGER_DB_DRIVER"
	EnvDBHost       = "FARMLEDGER_DB_HOST"
	EnvDBUser       = "FARMLEDGER_DB_USER"
	EnvDBName       = "FARMLEDGER_DB_NAME"
	EnvRedisURL     = "FARMLEDGER_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App     AppConfig
	Store   StoreConfig
	DB      DBConfig
	Redis   RedisConfig
	Ledger  LedgerConfig
	Rates   RatesConfig
	Abuse   AbuseConfig
	Manager ManagerConfig
	Cron    CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.Backend == StoreBackendSQL {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.Backend == StoreBackendRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s is required for the redis store backend", EnvRedisURL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FARMLEDGER_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"FARMLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the document backend holding the ledger, payments and credit documents.
type StoreConfig struct {
	Backend     string `envconfig:"FARMLEDGER_STORE_BACKEND" default:"memory"`
	KeyPrefix   string `envconfig:"FARMLEDGER_STORE_KEY_PREFIX" default:"farm"`
	AutoMigrate bool   `envconfig:"FARMLEDGER_AUTO_MIGRATE" default:"false"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendSQL:
		return nil
	}
	return fmt.Errorf("unsupported store backend %q", s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"FARMLEDGER_DB_DSN"`
	Driver string `envconfig:"FARMLEDGER_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"FARMLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"FARMLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FARMLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"FARMLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"FARMLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"FARMLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMLEDGER_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"FARMLEDGER_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"FARMLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMLEDGER_REDIS_URL"`
	Address      string        `envconfig:"FARMLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"FARMLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMLEDGER_REDIS_POOL_SIZE" default:"4"`
	DialTimeout  time.Duration `envconfig:"FARMLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type LedgerConfig struct {
	MaxActivities  int           `envconfig:"FARMLEDGER_LEDGER_MAX_ACTIVITIES" default:"5000"`
	IdempotencyTTL time.Duration `envconfig:"FARMLEDGER_LEDGER_IDEMPOTENCY_TTL" default:"720h"`
}

// RatesConfig holds game-balance constants. They are tuning values, not derived ones.
type RatesConfig struct {
	MainCropPrice         decimal.Decimal `envconfig:"FARMLEDGER_RATE_MAIN_CROP" default:"0.15"`
	SpecialtyCropPrice    decimal.Decimal `envconfig:"FARMLEDGER_RATE_SPECIALTY_CROP" default:"0.20"`
	AnimalDeliveryValue   decimal.Decimal `envconfig:"FARMLEDGER_RATE_ANIMAL_DELIVERY_VALUE" default:"160"`
	AnimalDeliveryPayment decimal.Decimal `envconfig:"FARMLEDGER_RATE_ANIMAL_DELIVERY_PAYMENT" default:"60"`
	AnimalsPerDelivery    int             `envconfig:"FARMLEDGER_RATE_ANIMALS_PER_DELIVERY" default:"4"`
	FeedPerDelivery       int             `envconfig:"FARMLEDGER_RATE_FEED_PER_DELIVERY" default:"8"`
	DeliveryLookback      time.Duration   `envconfig:"FARMLEDGER_RATE_DELIVERY_LOOKBACK" default:"2h"`
	DeliveryLookahead     time.Duration   `envconfig:"FARMLEDGER_RATE_DELIVERY_LOOKAHEAD" default:"10m"`
	PlantsPerSeed         int             `envconfig:"FARMLEDGER_RATE_PLANTS_PER_SEED" default:"10"`
	BoxDeliveryValue      decimal.Decimal `envconfig:"FARMLEDGER_RATE_BOX_DELIVERY_VALUE" default:"1000"`
	BoxesPerDelivery      int             `envconfig:"FARMLEDGER_RATE_BOXES_PER_DELIVERY" default:"250"`
}

type AbuseConfig struct {
	SuspiciousItemCharge decimal.Decimal `envconfig:"FARMLEDGER_ABUSE_SUSPICIOUS_ITEM_CHARGE" default:"1.00"`
	ExcessFeedRate       decimal.Decimal `envconfig:"FARMLEDGER_ABUSE_EXCESS_FEED_RATE" default:"2.00"`
	FeedTolerance        int             `envconfig:"FARMLEDGER_ABUSE_FEED_TOLERANCE" default:"8"`
	AnimalTheftRate      decimal.Decimal `envconfig:"FARMLEDGER_ABUSE_ANIMAL_THEFT_RATE" default:"40.00"`
	FeedTheftRate        decimal.Decimal `envconfig:"FARMLEDGER_ABUSE_FEED_THEFT_RATE" default:"2.00"`
	DefaultToolCost      decimal.Decimal `envconfig:"FARMLEDGER_ABUSE_DEFAULT_TOOL_COST" default:"10.00"`
	// ClampNegativeNet zeroes negative net payments. Only for workers hit by the
	// corrupted-return-records import; off by default.
	ClampNegativeNet bool `envconfig:"FARMLEDGER_ABUSE_CLAMP_NEGATIVE_NET" default:"false"`
}

type ManagerConfig struct {
	MinimumReserve       decimal.Decimal `envconfig:"FARMLEDGER_MANAGER_MINIMUM_RESERVE" default:"5000"`
	PlantUnitPoints      decimal.Decimal `envconfig:"FARMLEDGER_MANAGER_PLANT_UNIT_POINTS" default:"0.01"`
	AnimalDeliveryPoints decimal.Decimal `envconfig:"FARMLEDGER_MANAGER_ANIMAL_DELIVERY_POINTS" default:"10"`
	BoxDeliveryPoints    decimal.Decimal `envconfig:"FARMLEDGER_MANAGER_BOX_DELIVERY_POINTS" default:"25"`
	RestockUnitPoints    decimal.Decimal `envconfig:"FARMLEDGER_MANAGER_RESTOCK_UNIT_POINTS" default:"0.05"`
	ExpectationWindow    time.Duration   `envconfig:"FARMLEDGER_MANAGER_EXPECTATION_WINDOW" default:"24h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FARMLEDGER_CRON_INTERVAL" default:"1h"`
}

// Defaults resolves the domain tuning groups (ledger, rates, abuse, manager, cron) from the
// environment and their tag defaults without requiring the app or store settings.
func Defaults() Config {
	var cfg Config
	_ = envconfig.Process("", &cfg.Ledger)
	_ = envconfig.Process("", &cfg.Rates)
	_ = envconfig.Process("", &cfg.Abuse)
	_ = envconfig.Process("", &cfg.Manager)
	_ = envconfig.Process("", &cfg.Cron)
	cfg.Store.Backend = StoreBackendMemory
	cfg.Store.KeyPrefix = "farm"
	return cfg
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file:farmledger.db?_foreign_keys=on"
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
