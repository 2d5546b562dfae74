package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable configuration value object vibeMCP is built from:
// the workspace root, the index database path, the auth token, and the
// read-only/webhooks-enabled flags. It is constructed once by Load and
// passed by reference into the server's dependencies.
type Config struct {
	VibeRoot        string
	VibeDB          string
	VibePort        int
	AuthToken       string // empty means no auth required
	ReadOnly        bool
	WebhooksEnabled bool
	LogLevel        string
	LogFormat       string
	SyncInterval    time.Duration // 0 disables the periodic background sync sweep
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will
// be loaded automatically. Environment variables already set take
// precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up looking for a .env file
	_ = godotenv.Load() // Try current directory

	// Walk up from the working directory to the nearest .env file
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, statErr := os.Stat(envPath); statErr == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	home, _ := os.UserHomeDir()
	vibeRoot := getEnv("VIBE_ROOT", filepath.Join(home, ".vibe"))
	vibeDB := getEnv("VIBE_DB", filepath.Join(vibeRoot, "index.db"))

	portStr := getEnv("VIBE_PORT", "8080")
	vibePort, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid VIBE_PORT value %q: %w", portStr, err)
	}
	if vibePort < 1 || vibePort > 65535 {
		return nil, fmt.Errorf("VIBE_PORT must be between 1 and 65535, got %d", vibePort)
	}

	authToken := os.Getenv("VIBE_AUTH_TOKEN")
	if authToken != "" && len(authToken) < 32 {
		return nil, fmt.Errorf("VIBE_AUTH_TOKEN must be at least 32 characters if set")
	}

	readOnly, err := getBoolEnv("VIBE_READ_ONLY", false)
	if err != nil {
		return nil, err
	}

	webhooksEnabled, err := getBoolEnv("VIBE_WEBHOOKS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	syncSeconds, err := strconv.Atoi(getEnv("VIBE_SYNC_INTERVAL_SECONDS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIBE_SYNC_INTERVAL_SECONDS value: %w", err)
	}
	if syncSeconds < 0 {
		return nil, fmt.Errorf("VIBE_SYNC_INTERVAL_SECONDS must not be negative, got %d", syncSeconds)
	}

	return &Config{
		VibeRoot:        vibeRoot,
		VibeDB:          vibeDB,
		VibePort:        vibePort,
		AuthToken:       authToken,
		ReadOnly:        readOnly,
		WebhooksEnabled: webhooksEnabled,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		SyncInterval:    time.Duration(syncSeconds) * time.Second,
	}, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}
