package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tair/pos-core/pkg/database"
)

// Config holds the whole service configuration, read from the environment.
// Nested groups are looked up by their full variable names.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"pos-core"`
	Version     string `envconfig:"SERVICE_VERSION" default:"1.0.0"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort    string `envconfig:"GRPC_PORT" default:"9090"`
	Timezone    string `envconfig:"STORE_TIMEZONE" default:"Local"`

	JWTSecret       string        `envconfig:"JWT_SECRET" default:"change-me"`
	JWTTTL          time.Duration `envconfig:"JWT_TTL" default:"12h"`
	AdminPassword   string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	CashierPassword string        `envconfig:"CASHIER_PASSWORD" default:"cashier123"`
	SeedDemo        bool          `envconfig:"SEED_DEMO" default:"false"`

	NotificationWindow int           `envconfig:"NOTIFICATION_WINDOW" default:"20"`
	LoginRateLimit     int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow    time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`

	DB      DBConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Tracing TracingConfig
	Sync    SyncConfig
}

// DBConfig configures the postgres table-store mirror
type DBConfig struct {
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"posdb"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	Hydrate  bool   `envconfig:"DB_HYDRATE" default:"true"`
}

// KafkaConfig configures the change-event mirror and the notice consumer
type KafkaConfig struct {
	Enabled       bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers       []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	ChangesTopic  string   `envconfig:"KAFKA_CHANGES_TOPIC" default:"pos-changes"`
	NoticesTopic  string   `envconfig:"KAFKA_NOTICES_TOPIC" default:"pos-system-notices"`
	ConsumerGroup string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"pos-core"`
}

// RedisConfig configures shared read state and rate limiting
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	ReadTTL  time.Duration `envconfig:"REDIS_READ_TTL" default:"720h"`
}

// TracingConfig configures the Jaeger exporter
type TracingConfig struct {
	Enabled        bool   `envconfig:"TRACING_ENABLED" default:"false"`
	JaegerEndpoint string  `envconfig:"TRACING_JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces"`
	SampleRatio    float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1"`
}

// SyncConfig configures mirror replication
type SyncConfig struct {
	Interval        time.Duration `envconfig:"SYNC_INTERVAL" default:"30s"`
	BreakerFailures int           `envconfig:"SYNC_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"SYNC_BREAKER_TIMEOUT" default:"30s"`
	MaxOutbox       int           `envconfig:"SYNC_MAX_OUTBOX" default:"10000"`
	MaxAttempts     int           `envconfig:"SYNC_MAX_ATTEMPTS" default:"20"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether logs should be human readable
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Location resolves the store timezone used for day buckets
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Database converts the mirror settings into a connection config
func (c *Config) Database() database.Config {
	return database.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		DBName:   c.DB.Name,
		SSLMode:  c.DB.SSLMode,
		TimeZone: c.Timezone,
	}
}
