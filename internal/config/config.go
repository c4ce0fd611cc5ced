package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devSecret = "dev-secret-change-in-production-min-32-chars"

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Business    BusinessConfig    `mapstructure:"business"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	CNPJ        CNPJConfig        `mapstructure:"cnpj"`
}

type ServerConfig struct {
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// AuthConfig points at the secret the hosting platform signs user tokens with.
type AuthConfig struct {
	JWTSecretEnv string `mapstructure:"jwt_secret_env"`
	Issuer       string `mapstructure:"issuer"`
}

type SyncConfig struct {
	APIKeyEnv          string `mapstructure:"api_key_env"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	BulkMaxOps         int    `mapstructure:"bulk_max_ops"`
}

type BusinessConfig struct {
	Timezone            string `mapstructure:"timezone"`
	RetroactiveDays     int    `mapstructure:"retroactive_days"`
	RegisterDescription string `mapstructure:"register_description"`
	DepositDescription  string `mapstructure:"deposit_description"`
}

type MaintenanceConfig struct {
	DefaultIntervalHours float64 `mapstructure:"default_interval_hours"`
	WarningHours         float64 `mapstructure:"warning_hours"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type CNPJConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the YAML file at path, then environment variables prefixed
// with AMC_ (AMC_DATABASE_HOST overrides database.host). A .env file in the
// working directory is loaded first when present. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AMC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "openassetcore")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.jwt_secret_env", "JWT_SECRET")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("sync.api_key_env", "SYNC_API_KEY")
	v.SetDefault("sync.rate_limit_per_minute", 50)
	v.SetDefault("sync.bulk_max_ops", 100)

	v.SetDefault("business.timezone", "America/Belem")
	v.SetDefault("business.retroactive_days", 7)
	v.SetDefault("business.register_description", "Aguardando definição de localização")
	v.SetDefault("business.deposit_description", "Retornado ao depósito")

	v.SetDefault("maintenance.default_interval_hours", 250)
	v.SetDefault("maintenance.warning_hours", 25)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "openassetcore")

	v.SetDefault("cnpj.base_url", "https://brasilapi.com.br/api/cnpj/v1")
	v.SetDefault("cnpj.timeout", "10s")
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid database.driver %q: expected postgres or memory", c.Database.Driver)
	}
	if c.Sync.RateLimitPerMinute <= 0 {
		return fmt.Errorf("sync.rate_limit_per_minute must be positive")
	}
	if c.Sync.BulkMaxOps <= 0 {
		return fmt.Errorf("sync.bulk_max_ops must be positive")
	}
	if c.Business.RetroactiveDays <= 0 {
		return fmt.Errorf("business.retroactive_days must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode)
}

// GetJWTSecret reads the token secret from the configured environment variable.
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "JWT_SECRET"
	}

	secret := os.Getenv(envVar)
	if secret == "" {
		return devSecret
	}
	return secret
}

func (a *AuthConfig) IsProductionReady() bool {
	secret := a.GetJWTSecret()
	return secret != devSecret && len(secret) >= 32
}

// GetAPIKey returns the shared secret of the sync API, empty when unset.
func (s *SyncConfig) GetAPIKey() string {
	envVar := s.APIKeyEnv
	if envVar == "" {
		envVar = "SYNC_API_KEY"
	}
	return os.Getenv(envVar)
}
