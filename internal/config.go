package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Directory     DirectoryConfig     `mapstructure:"directory"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// ProvidersConfig holds the outbound payment provider endpoints. Merchant
// credentials are not configured here: they arrive per subsidiary from the
// location-config service.
type ProvidersConfig struct {
	DirectDebit ProviderEndpoint `mapstructure:"direct_debit"`
	CardGateway ProviderEndpoint `mapstructure:"card_gateway"`
}

type ProviderEndpoint struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DirectoryConfig points at the user-directory and location-config services.
type DirectoryConfig struct {
	UserServiceURL     string        `mapstructure:"user_service_url"`
	LocationServiceURL string        `mapstructure:"location_service_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration from environment variables,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Providers: ProvidersConfig{
			DirectDebit: ProviderEndpoint{
				BaseURL: getEnv("DIRECT_DEBIT_BASE_URL", ""),
				APIKey:  getEnv("DIRECT_DEBIT_API_KEY", ""),
				Timeout: getEnvAsDuration("DIRECT_DEBIT_TIMEOUT", 30*time.Second),
			},
			CardGateway: ProviderEndpoint{
				BaseURL: getEnv("CARD_GATEWAY_BASE_URL", ""),
				APIKey:  getEnv("CARD_GATEWAY_API_KEY", ""),
				Timeout: getEnvAsDuration("CARD_GATEWAY_TIMEOUT", 30*time.Second),
			},
		},
		Directory: DirectoryConfig{
			UserServiceURL:     getEnv("USER_SERVICE_URL", ""),
			LocationServiceURL: getEnv("LOCATION_SERVICE_URL", ""),
			Timeout:            getEnvAsDuration("DIRECTORY_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Providers.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("providers config: %v", err))
	}

	if err := c.Directory.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("directory config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *ProvidersConfig) Validate() error {
	if err := c.DirectDebit.validate("direct_debit"); err != nil {
		return err
	}
	return c.CardGateway.validate("card_gateway")
}

func (p *ProviderEndpoint) validate(name string) error {
	if p.BaseURL == "" {
		return fmt.Errorf("%s base_url is required", name)
	}
	if _, err := url.Parse(p.BaseURL); err != nil {
		return fmt.Errorf("invalid %s base_url: %w", name, err)
	}
	return nil
}

func (c *DirectoryConfig) Validate() error {
	if c.UserServiceURL == "" {
		return errors.New("user_service_url is required")
	}
	if c.LocationServiceURL == "" {
		return errors.New("location_service_url is required")
	}
	return nil
}
