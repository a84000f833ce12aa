package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "submeter/backend/libs/config"
	"submeter/backend/services/submeter-service/internal/storage"
)

const defaultPort = "8080"

// Config defines submeter service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SUBMETER_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver string `yaml:"driver" env:"SUBMETER_STORAGE_DRIVER"`
		Path   string `yaml:"path" env:"SUBMETER_SQLITE_PATH"`
	} `yaml:"storage"`
	Database struct {
		DSN string `yaml:"dsn" env:"SUBMETER_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr      string `yaml:"addr" env:"SUBMETER_REDIS_ADDR"`
		Password  string `yaml:"password" env:"SUBMETER_REDIS_PASSWORD"`
		DB        int    `yaml:"db" env:"SUBMETER_REDIS_DB"`
		KeyPrefix string `yaml:"keyPrefix" env:"SUBMETER_REDIS_KEY_PREFIX"`
	} `yaml:"redis"`
	WS struct {
		WriteTimeout time.Duration `yaml:"writeTimeout" env:"SUBMETER_WS_WRITE_TIMEOUT"`
		PingInterval time.Duration `yaml:"pingInterval" env:"SUBMETER_WS_PING_INTERVAL"`
		// AllowedOrigins is a comma separated list of extra origins, "*" for any.
		AllowedOrigins string `yaml:"allowedOrigins" env:"SUBMETER_WS_ALLOWED_ORIGINS"`
	} `yaml:"ws"`
	Display struct {
		Currency string `yaml:"currency" env:"SUBMETER_CURRENCY"`
	} `yaml:"display"`
}

// Default returns configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Storage.Driver = storage.DriverMemory
	cfg.Storage.Path = "data/submeter.db"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.KeyPrefix = "submeter:"
	cfg.WS.WriteTimeout = 10 * time.Second
	cfg.WS.PingInterval = 30 * time.Second
	cfg.Display.Currency = "PHP"
	return cfg
}

// Load reads configuration from file/env.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver specific requirements.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case storage.DriverMemory:
	case storage.DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr required")
		}
	case storage.DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required")
		}
	case storage.DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("config: sqlite path required")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// HTTPAddress returns :port style string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// WSWriteTimeout returns the websocket write deadline.
func (c *Config) WSWriteTimeout() time.Duration {
	if c.WS.WriteTimeout <= 0 {
		return 10 * time.Second
	}
	return c.WS.WriteTimeout
}

// WSPingInterval returns the keepalive interval.
func (c *Config) WSPingInterval() time.Duration {
	if c.WS.PingInterval <= 0 {
		return 30 * time.Second
	}
	return c.WS.PingInterval
}

// WSAllowedOrigins returns the cross-origin allow list for websocket upgrades.
func (c *Config) WSAllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.WS.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
