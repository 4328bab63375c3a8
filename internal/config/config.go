package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Facturador"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"facturador"`
	}

	Store struct {
		Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Numbering struct {
		MaxAttempts int `envconfig:"NUMBERING_MAX_ATTEMPTS" default:"5"`
	}

	Fiscal struct {
		CAEValidity time.Duration `envconfig:"CAE_VALIDITY" default:"168h"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Telemetry struct {
		OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"facturador"`
		Insecure     bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case StoreDriverPostgres, StoreDriverMemory:
		c.Store.Driver = strings.ToLower(c.Store.Driver)
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Numbering.MaxAttempts < 1 {
		return fmt.Errorf("NUMBERING_MAX_ATTEMPTS must be at least 1, got %d", c.Numbering.MaxAttempts)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
		c.Log.Format = strings.ToLower(c.Log.Format)
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format)
	}

	if c.Fiscal.CAEValidity <= 0 {
		return fmt.Errorf("CAE_VALIDITY must be positive, got %s", c.Fiscal.CAEValidity)
	}

	return nil
}
