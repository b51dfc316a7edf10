package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		// Not fatal; the environment may carry everything we need
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus environment variables
		// fully describe a deployment
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Set environment variables to override config
	v.SetEnvPrefix("LH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// ValidateProviders checks that the provider credentials required to serve
// generation requests are present. Called at startup so a misconfigured
// deployment fails fast instead of failing its first paying request.
func (c *Config) ValidateProviders() error {
	if c.Provider.ReplicateAPIToken == "" {
		return errs.NewConfigurationError("REPLICATE_API_TOKEN")
	}
	if c.Provider.OpenAIAPIKey == "" {
		return errs.NewConfigurationError("OPENAI_API_KEY")
	}
	return nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Non-critical server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 300)     // seconds; sync generations block
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Database defaults for non-sensitive settings
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Provider defaults; credentials have no default on purpose
	v.SetDefault("provider.requestTimeout", 300)  // seconds
	v.SetDefault("provider.pollInterval", 2)      // seconds
	v.SetDefault("provider.maxPollDuration", 600) // seconds

	// Generation serving defaults
	v.SetDefault("generation.galleryPageSize", 50)
}

// getEnvironment determines the environment to use based on LH_ENV
func getEnvironment() string {
	env := os.Getenv("LH_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values.
// Credentials are also accepted under their conventional unprefixed names.
func processEnvOverrides(v *viper.Viper) {
	// Database sensitive information
	if dbHost := os.Getenv("LH_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("LH_DB_PORT"); dbPort != "" {
		v.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("LH_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("LH_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("LH_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}
	if sslMode := os.Getenv("LH_DB_SSL_MODE"); sslMode != "" {
		v.Set("database.sslMode", sslMode)
	}

	// Database performance settings
	if maxOpenConns := getEnvInt("LH_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if maxIdleConns := getEnvInt("LH_DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		v.Set("database.maxIdleConns", maxIdleConns)
	}
	if queryTimeout := getEnvInt("LH_DB_QUERY_TIMEOUT_SECONDS", 0); queryTimeout > 0 {
		v.Set("database.queryTimeout", queryTimeout)
	}

	// Provider credentials; prefixed form wins over the conventional one
	if token := os.Getenv("REPLICATE_API_TOKEN"); token != "" {
		v.Set("provider.replicateApiToken", token)
	}
	if token := os.Getenv("LH_REPLICATE_API_TOKEN"); token != "" {
		v.Set("provider.replicateApiToken", token)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		v.Set("provider.openaiApiKey", key)
	}
	if key := os.Getenv("LH_OPENAI_API_KEY"); key != "" {
		v.Set("provider.openaiApiKey", key)
	}
	if timeout := getEnvInt("LH_PROVIDER_REQUEST_TIMEOUT_SECONDS", 0); timeout > 0 {
		v.Set("provider.requestTimeout", timeout)
	}
	if interval := getEnvInt("LH_PROVIDER_POLL_INTERVAL_SECONDS", 0); interval > 0 {
		v.Set("provider.pollInterval", interval)
	}

	// Server settings
	if serverHost := os.Getenv("LH_SERVER_HOST"); serverHost != "" {
		v.Set("server.host", serverHost)
	}
	if serverPort := os.Getenv("LH_SERVER_PORT"); serverPort != "" {
		v.Set("server.port", serverPort)
	}

	// Logger settings
	if logLevel := os.Getenv("LH_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}

	// Generation settings
	if pageSize := getEnvInt("LH_GENERATION_GALLERY_PAGE_SIZE", 0); pageSize > 0 {
		v.Set("generation.galleryPageSize", pageSize)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	// Convert seconds to time.Duration
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	// Convert minutes to time.Duration
	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	// Convert seconds to time.Duration
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
	config.Provider.RequestTimeout = time.Duration(config.Provider.RequestTimeout) * time.Second
	config.Provider.PollInterval = time.Duration(config.Provider.PollInterval) * time.Second
	config.Provider.MaxPollDuration = time.Duration(config.Provider.MaxPollDuration) * time.Second
}
