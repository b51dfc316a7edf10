package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Logger      LoggerConfig     `mapstructure:"logger"`
	Provider    ProviderConfig   `mapstructure:"provider"`
	Generation  GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// ProviderConfig contains upstream generation provider settings. The API
// credentials only ever come from environment variables, never from a
// config file.
type ProviderConfig struct {
	ReplicateAPIToken string        `mapstructure:"replicateApiToken"`
	OpenAIAPIKey      string        `mapstructure:"openaiApiKey"`
	RequestTimeout    time.Duration `mapstructure:"requestTimeout"`  // seconds
	PollInterval      time.Duration `mapstructure:"pollInterval"`    // seconds
	MaxPollDuration   time.Duration `mapstructure:"maxPollDuration"` // seconds
}

// GenerationConfig contains generation serving settings
type GenerationConfig struct {
	GalleryPageSize int `mapstructure:"galleryPageSize"`
}
