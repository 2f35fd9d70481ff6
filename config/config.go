package config

import (
	"fmt"
	"net"
	"time"

	"github.com/Temutjin2k/ride-dispatch/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"ride-dispatch"`
		InstanceID  string `env:"INSTANCE_ID"`
		LogLevel    string `env:"LOG_LEVEL" default:"INFO"`

		Server    ServerConfig
		Database  DatabaseConfig
		RabbitMQ  RabbitMQConfig
		Redis     RedisConfig
		Auth      Auth
		Pricing   PricingConfig
		Tracking  TrackingConfig
		Routing   RoutingConfig
		Wallet    WalletConfig
		Firebase  FirebaseConfig
		SMS       SMSConfig
		SMTP      SMTPConfig
		S3        S3Config
	}

	ServerConfig struct {
		Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
		Port            string        `env:"SERVER_PORT" default:"3000"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
		AllowedOrigins  []string      `env:"SERVER_ALLOWED_ORIGINS" default:"*"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"dispatch_user"`
		Password string `env:"DATABASE_PASSWORD" default:"dispatch_pass"`
		Database string `env:"DATABASE_DATABASE" default:"dispatch_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	// RabbitMQConfig turns on the cross-instance event relay.
	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"dispatch_events"`
	}

	RedisConfig struct {
		Enabled  bool   `env:"REDIS_ENABLED" default:"false"`
		Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
		Channel  string `env:"REDIS_CHANNEL" default:"pricing_changes"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		APIKey    string `env:"AUTH_API_KEY"`
	}

	PricingConfig struct {
		Timezone     string        `env:"PRICING_TIMEZONE" default:"Africa/Luanda"`
		ScanInterval time.Duration `env:"PRICING_SCAN_INTERVAL" default:"60s"`
	}

	TrackingConfig struct {
		StaleAfter     time.Duration `env:"TRACKING_STALE_AFTER" default:"5m"`
		SweepInterval  time.Duration `env:"TRACKING_SWEEP_INTERVAL" default:"60s"`
		RecordInterval time.Duration `env:"TRACKING_RECORD_INTERVAL" default:"60s"`
	}

	RoutingConfig struct {
		GoogleAPIKey string `env:"ROUTING_GOOGLE_API_KEY"`
		OSRMURL      string `env:"ROUTING_OSRM_URL" default:"http://router.project-osrm.org"`
	}

	WalletConfig struct {
		URL string `env:"WALLET_URL"`
	}

	FirebaseConfig struct {
		ProjectID       string `env:"FIREBASE_PROJECT_ID"`
		CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	}

	SMSConfig struct {
		URL    string `env:"SMS_URL" default:"https://www.telcosms.co.ao/send_message"`
		APIKey string `env:"SMS_API_KEY"`
	}

	SMTPConfig struct {
		Host     string `env:"SMTP_HOST"`
		Port     string `env:"SMTP_PORT" default:"587"`
		Username string `env:"SMTP_USERNAME"`
		Password string `env:"SMTP_PASSWORD"`
		From     string `env:"SMTP_FROM"`
	}

	S3Config struct {
		Endpoint  string `env:"S3_ENDPOINT"`
		Region    string `env:"S3_REGION" default:"us-east-1"`
		Bucket    string `env:"S3_BUCKET"`
		AccessKey string `env:"S3_ACCESS_KEY"`
		SecretKey string `env:"S3_SECRET_KEY"`
		PublicURL string `env:"S3_PUBLIC_URL"`
	}
)

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// PoolLimits tunes the pgx pool.
func (c DatabaseConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Location resolves the pricing time zone, falling back to UTC.
func (c PricingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.S3.Endpoint != "" && c.S3.Bucket == "" {
		return fmt.Errorf("s3 bucket is required when an endpoint is set")
	}
	return nil
}
