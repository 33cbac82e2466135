package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rngbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Runner   RunnerConfig
	External ExternalConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// results in memory.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// Enabled reports whether results go to PostgreSQL
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// RunnerConfig holds defaults for generation and test runs
type RunnerConfig struct {
	DefaultSamples int
	DefaultSeed    string
	Workers        int
}

// ExternalGenerator is an out-of-process generator registered by name
type ExternalGenerator struct {
	Name string
	Path string
}

// ExternalConfig holds out-of-process generator settings
type ExternalConfig struct {
	Timeout    time.Duration
	Generators []ExternalGenerator
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server:   *loadServerConfig(),
		Runner:   *loadRunnerConfig(),
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	external, err := loadExternalConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load external generator configuration")
	}
	config.External = *external

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		DefaultSamples: getEnvIntOrDefault("RNG_DEFAULT_SAMPLES", 10000),
		DefaultSeed:    getEnvOrDefault("RNG_DEFAULT_SEED", ""),
		Workers:        getEnvIntOrDefault("RNG_WORKERS", 4),
	}
}

func loadExternalConfig() (*ExternalConfig, error) {
	generators, err := ParseExternalGenerators(os.Getenv("RNG_EXTERNAL_GENERATORS"))
	if err != nil {
		return nil, err
	}
	return &ExternalConfig{
		Timeout:    getEnvDurationOrDefault("RNG_EXTERNAL_TIMEOUT", 60*time.Second),
		Generators: generators,
	}, nil
}

// ParseExternalGenerators reads "name=path,name=path". Blank entries are
// skipped; duplicate names are rejected.
func ParseExternalGenerators(s string) ([]ExternalGenerator, error) {
	var out []ExternalGenerator
	seen := make(map[string]bool)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, path, ok := strings.Cut(entry, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("external generator %q must look like name=path", entry))
		}
		if seen[name] {
			return nil, errors.ConfigInvalid(fmt.Sprintf("external generator %q listed twice", name))
		}
		seen[name] = true
		out = append(out, ExternalGenerator{Name: name, Path: path})
	}
	return out, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Runner.DefaultSamples <= 0 {
		return errors.ConfigInvalid("RNG_DEFAULT_SAMPLES must be positive")
	}
	if config.Runner.Workers <= 0 {
		return errors.ConfigInvalid("RNG_WORKERS must be positive")
	}
	if config.External.Timeout <= 0 {
		return errors.ConfigInvalid("RNG_EXTERNAL_TIMEOUT must be positive")
	}
	switch config.LogLevel {
	case "ERROR", "WARN", "INFO", "DEBUG", "TRACE":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown LOG_LEVEL %q", config.LogLevel))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// bare numbers are seconds
		if secs, err := strconv.ParseFloat(value, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultValue
}
