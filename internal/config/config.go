package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. SALES_SERVER_PORT
const EnvPrefix = "SALES"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" default:"100"` // requests per second, 0 disables
	RateBurst       int           `yaml:"rate_burst" envconfig:"RATE_BURST" default:"200"`
}

// SecurityConfig contains CORS configuration for the dashboard front end
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8501"`
	EnableCORS     bool     `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`     // json, text
	Output string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`   // stdout, stderr, file
	File   string `yaml:"file" envconfig:"FILE" default:"logs/app.log"` // used when output is file
}

// DataConfig contains dataset loading configuration
type DataConfig struct {
	DefaultSource   string `yaml:"default_source" envconfig:"DEFAULT_SOURCE"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
	SkipInvalidRows bool   `yaml:"skip_invalid_rows" envconfig:"SKIP_INVALID_ROWS" default:"false"`
	Workers         int    `yaml:"workers" envconfig:"WORKERS" default:"4"`
}

// Load loads configuration from environment variables, then overlays the YAML file
// named by SALES_CONFIG_FILE. Environment values win over file values.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := os.Getenv(EnvPrefix + "_CONFIG_FILE"); configFile != "" {
		fileConfig, keys, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, keys, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileKeys records which section keys a config file sets, so that explicit
// zero values (enable_cors: false, rate_limit: 0) still apply
type fileKeys map[string]map[string]interface{}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, fileKeys, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, err
	}
	var keys fileKeys
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, nil, err
	}

	return &cfg, keys, nil
}

// mergeConfigs takes file values for every setting the file names and the environment
// does not. The variable for section key read_timeout is SALES_SERVER_READ_TIMEOUT.
func mergeConfigs(fileConfig Config, keys fileKeys, envConfig Config) Config {
	use := func(section, key string) bool {
		if _, ok := keys[section][key]; !ok {
			return false
		}
		_, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(section+"_"+key))
		return !ok
	}

	if use("server", "port") {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if use("server", "read_timeout") {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if use("server", "write_timeout") {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if use("server", "idle_timeout") {
		envConfig.Server.IdleTimeout = fileConfig.Server.IdleTimeout
	}
	if use("server", "shutdown_timeout") {
		envConfig.Server.ShutdownTimeout = fileConfig.Server.ShutdownTimeout
	}
	if use("server", "rate_limit") {
		envConfig.Server.RateLimit = fileConfig.Server.RateLimit
	}
	if use("server", "rate_burst") {
		envConfig.Server.RateBurst = fileConfig.Server.RateBurst
	}
	if use("security", "allowed_origins") {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if use("security", "enable_cors") {
		envConfig.Security.EnableCORS = fileConfig.Security.EnableCORS
	}
	if use("logging", "level") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if use("logging", "format") {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if use("logging", "output") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if use("logging", "file") {
		envConfig.Logging.File = fileConfig.Logging.File
	}
	if use("data", "default_source") {
		envConfig.Data.DefaultSource = fileConfig.Data.DefaultSource
	}
	if use("data", "max_upload_bytes") {
		envConfig.Data.MaxUploadBytes = fileConfig.Data.MaxUploadBytes
	}
	if use("data", "skip_invalid_rows") {
		envConfig.Data.SkipInvalidRows = fileConfig.Data.SkipInvalidRows
	}
	if use("data", "workers") {
		envConfig.Data.Workers = fileConfig.Data.Workers
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Data.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Data.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	return nil
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
