package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Configuration constants for file system footprint
const (
	ConfigDirName = "braintrain"

	// TokenFile is the single durable slot holding the bearer token.
	TokenFile = "auth_token.json"

	// MasterKeyFile holds the key sealing the token slot at rest.
	MasterKeyFile = "master.key"
)

// Config is the process-wide client configuration, resolved once at startup.
type Config struct {
	// APIBaseURL is the backend base address, e.g. http://localhost:8080/api.
	APIBaseURL string

	// AppOrigin is the origin the client presents as. When it is https and
	// the API is plain http, blocked requests fall back per the mixed-content
	// policy in the api package.
	AppOrigin string

	// GoogleClientID identifies this client to the Google identity provider.
	GoogleClientID string

	// RequestTimeoutSeconds bounds every backend call.
	RequestTimeoutSeconds int
}

// Load resolves configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:            getEnv("BRAINTRAIN_API_URL", "http://localhost:8080/api"),
		AppOrigin:             getEnv("APP_ORIGIN", "https://localhost"),
		GoogleClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
		RequestTimeoutSeconds: getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("missing required configuration: BRAINTRAIN_API_URL")
	}

	return cfg, nil
}

// GetConfigDir returns the braintrain config directory path
func GetConfigDir() (string, error) {
	confDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(confDir, ConfigDirName), nil
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Invalid value for %s: %q, using default %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
