package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// StoreURL is the base URL of the remote gossip store.
	StoreURL string
	// AdminUser is the single reserved identity with moderation rights.
	AdminUser string
	// HTTPTimeout bounds every round trip to the store.
	HTTPTimeout time.Duration
	// SessionDBPath is the sqlite file holding the persisted identity
	// claim. Ignored when RedisURL is set.
	SessionDBPath string
	// RedisURL, when non-empty, selects the redis session backend.
	RedisURL string
}

func Load() Config {
	return Config{
		StoreURL:      getenv("GOSSIP_STORE_URL", "http://localhost:8080"),
		AdminUser:     getenv("GOSSIP_ADMIN_USER", "Henry"),
		HTTPTimeout:   time.Duration(getenvInt("GOSSIP_HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionDBPath: getenv("GOSSIP_SESSION_DB", defaultSessionDBPath()),
		RedisURL:      getenv("GOSSIP_REDIS_URL", ""),
	}
}

func defaultSessionDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.db"
	}
	return filepath.Join(home, ".gossip", "session.db")
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
