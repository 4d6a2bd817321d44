package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// Record store backends selectable with RECORD_STORE.
const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
	StoreDatastore = "datastore"
)

type envConfig struct {
	// server config
	APP_PORT              string
	RATE_LIMIT_PER_MINUTE int
	MAX_UPLOAD_SIZE       string
	// record store config
	RECORD_STORE         string
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	SQLITE_PATH          string
	DATASTORE_PROJECT_ID string
	// blob store config
	UPLOAD_DIR          string
	FILES_URL_PREFIX    string
	ORPHAN_GRACE_PERIOD time.Duration
	// export config
	EXPORT_TEMPLATE_PATH string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env (when present) and the process environment into DefaultEnvConfig.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:              getEnvString("APP_PORT", "8080"),
		RATE_LIMIT_PER_MINUTE: getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
		MAX_UPLOAD_SIZE:       getEnvString("MAX_UPLOAD_SIZE", "10M"),
		RECORD_STORE:          strings.ToLower(getEnvString("RECORD_STORE", StoreMemory)),
		DB_HOST:               getEnvString("DB_HOST", "localhost"),
		DB_PORT:               getEnvInt("DB_PORT", 5432),
		DB_USER:               getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:           getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:               getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:           getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:  getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:     getEnvInt("DB_MAX_OPEN_CONNS", 100),
		SQLITE_PATH:           getEnvString("SQLITE_PATH", "employees.db"),
		DATASTORE_PROJECT_ID:  getEnvString("DATASTORE_PROJECT_ID", ""),
		UPLOAD_DIR:            getEnvString("UPLOAD_DIR", "uploads"),
		FILES_URL_PREFIX:      getEnvString("FILES_URL_PREFIX", "/files"),
		ORPHAN_GRACE_PERIOD:   getEnvDuration("ORPHAN_GRACE_PERIOD", time.Hour),
		EXPORT_TEMPLATE_PATH:  getEnvString("EXPORT_TEMPLATE_PATH", ""),
		LOG_FILE_PATH:         getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:             getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
