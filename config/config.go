package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Metadata store config
	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	// Logging config
	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	// Feature flags
	EnableSSHTunneling bool

	// Schema discovery bound - discovery is the only network-facing step of
	// the update flow and must not hold the transaction open indefinitely
	DiscoveryTimeout time.Duration
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads application configuration from .env file and environment variables.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	Cfg.DBHost = getEnv("DB_HOST", "127.0.0.1")
	Cfg.DBPort = getEnvInt("DB_PORT", 3306)
	Cfg.DBUser = getEnv("DB_USER", "root")
	Cfg.DBPass = getEnv("DB_PASS", "")
	Cfg.DBName = getEnv("DB_NAME", "datasource_registry")

	Cfg.LogLevel = getEnv("LOG_LEVEL", "DEBUG")
	Cfg.LogFile = getEnv("LOG_FILE", "/var/log/datasourceapi/datasourceapi.log")
	Cfg.LogMaxSize = getEnvInt("LOG_MAX_SIZE", 10)
	Cfg.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", 3)
	Cfg.LogMaxAge = getEnvInt("LOG_MAX_AGE", 28)
	Cfg.LogCompress = getEnvBool("LOG_COMPRESS", true)

	Cfg.EnableSSHTunneling = getEnvBool("FEATURE_SSH_TUNNELING", true)

	Cfg.DiscoveryTimeout = time.Duration(getEnvInt("DISCOVERY_TIMEOUT", 30)) * time.Second

	log.Printf("[INFO] Config loaded - DB: %s@%s:%d/%s, LogLevel: %s, SSHTunneling: %v, DiscoveryTimeout: %v",
		Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName, Cfg.LogLevel, Cfg.EnableSSHTunneling, Cfg.DiscoveryTimeout)

	return nil
}

// IsFeatureEnabled resolves a named feature flag against the loaded config.
// Unknown feature names are treated as disabled.
func IsFeatureEnabled(name string) bool {
	switch name {
	case "SSH_TUNNELING":
		return Cfg.EnableSSHTunneling
	default:
		return false
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
