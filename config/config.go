package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver string
	DBDSN    string

	// SessionSecret signs the current-session token. Installations should
	// override the default.
	SessionSecret   string
	SessionTTLHours int

	SeedDemoData bool
}

// FromEnv reads configuration from the environment, loading a .env file
// first when one is present next to the process.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		SessionSecret:   envOr("SESSION_SECRET", "cafsi-local-secret"),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 8),
		SeedDemoData:    envBool("SEED_DEMO_DATA", true),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
