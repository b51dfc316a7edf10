package database

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/config"
)

// Config represents database configuration
type Config struct {
	Driver          string        `mapstructure:"db_driver"`
	Host            string        `mapstructure:"db_host"`
	Port            int           `mapstructure:"db_port"`
	Username        string        `mapstructure:"db_username"`
	Password        string        `mapstructure:"db_password"`
	Database        string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"db_ssl_mode"`
	MaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"db_conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"db_query_timeout"`
	LogLevel        string        `mapstructure:"db_log_level"`
	RetryAttempts   int           `mapstructure:"db_retry_attempts"`
	RetryDelay      int           `mapstructure:"db_retry_delay"`
}

// DefaultConfig returns a Config with default values. No credentials are
// hardcoded; they must come from environment variables.
func DefaultConfig() *Config {
	return &Config{
		Driver:          configEnvOrDefault("LH_DB_DRIVER", "postgres"),
		Host:            os.Getenv("LH_DB_HOST"),
		Port:            configEnvAsInt("LH_DB_PORT", 5432),
		Username:        os.Getenv("LH_DB_USERNAME"),
		Password:        os.Getenv("LH_DB_PASSWORD"),
		Database:        os.Getenv("LH_DB_NAME"),
		SSLMode:         configEnvOrDefault("LH_DB_SSL_MODE", "disable"),
		MaxOpenConns:    configEnvAsInt("LH_DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    configEnvAsInt("LH_DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: time.Duration(configEnvAsInt("LH_DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		ConnMaxIdleTime: time.Duration(configEnvAsInt("LH_DB_CONN_MAX_IDLE_TIME_MINUTES", 15)) * time.Minute,
		QueryTimeout:    time.Duration(configEnvAsInt("LH_DB_QUERY_TIMEOUT_SECONDS", 5)) * time.Second,
		LogLevel:        configEnvOrDefault("LH_LOGGER_LEVEL", "info"),
		RetryAttempts:   configEnvAsInt("LH_DB_RETRY_ATTEMPTS", 3),
		RetryDelay:      configEnvAsInt("LH_DB_RETRY_DELAY_SECONDS", 1),
	}
}

// FromAppConfig adapts the global configuration to database configuration.
// Environment variables win over config file values for credentials.
func FromAppConfig(conf *config.Config) *Config {
	dbConf := DefaultConfig()

	if dbConf.Host == "" {
		dbConf.Host = conf.Database.Host
	}
	if dbConf.Port == 0 {
		dbConf.Port = ParsePort(conf.Database.Port)
	}
	if dbConf.Username == "" {
		dbConf.Username = conf.Database.Username
	}
	if dbConf.Password == "" {
		dbConf.Password = conf.Database.Password
	}
	if dbConf.Database == "" {
		dbConf.Database = conf.Database.Database
	}

	if conf.Database.SSLMode != "" {
		dbConf.SSLMode = conf.Database.SSLMode
	}
	if conf.Database.MaxOpenConns > 0 {
		dbConf.MaxOpenConns = conf.Database.MaxOpenConns
	}
	if conf.Database.MaxIdleConns > 0 {
		dbConf.MaxIdleConns = conf.Database.MaxIdleConns
	}
	if conf.Database.ConnMaxLifetime > 0 {
		dbConf.ConnMaxLifetime = conf.Database.ConnMaxLifetime
	}
	if conf.Database.ConnMaxIdleTime > 0 {
		dbConf.ConnMaxIdleTime = conf.Database.ConnMaxIdleTime
	}
	if conf.Database.QueryTimeout > 0 {
		dbConf.QueryTimeout = conf.Database.QueryTimeout
	}
	if conf.Database.RetryAttempts > 0 {
		dbConf.RetryAttempts = conf.Database.RetryAttempts
	}
	if conf.Database.RetryDelay > 0 {
		dbConf.RetryDelay = int(conf.Database.RetryDelay.Seconds())
	}
	if conf.Logger.Level != "" {
		dbConf.LogLevel = conf.Logger.Level
	}

	return dbConf
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Port)
	}
	if c.Username == "" {
		return errors.New("database username is required")
	}
	if c.Password == "" {
		return errors.New("database password is required")
	}
	if c.Database == "" {
		return errors.New("database name is required")
	}
	if c.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
		"prefer":      true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
	}

	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be positive, got: %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max idle connections must be positive, got: %d", c.MaxIdleConns)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}

// ParsePort converts a port string to an int
func ParsePort(port string) int {
	var p int
	_, err := fmt.Sscanf(port, "%d", &p)
	if err != nil || p <= 0 || p > 65535 {
		return 0 // signal not set instead of defaulting
	}
	return p
}

// configEnvOrDefault gets a value from environment variables with a default value
func configEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// configEnvAsInt gets an integer value from environment variables with a default
func configEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
