package hbnb

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hbnbclone/hbnb/pkg/storage"
)

// Config holds application configuration.
type Config struct {
	// Storage selects the engine. Only "db" selects PostgreSQL.
	Storage storage.Mode
	// FilePath is the JSON (or, with a .cbor extension, CBOR) file of the
	// file engine.
	FilePath string
	// DSN is the PostgreSQL connection string of the db engine.
	DSN string
	// Env "test" drops every table when the db engine opens.
	Env string
	// SlowQuery is the duration above which SQL statements are logged as
	// warnings. Zero disables the warning.
	SlowQuery time.Duration

	PasswordHash string
	ReadOnly     bool

	LogLevel string
	LogFile  string
	// LogWriter receives logs when LogFile is empty. Defaults to stderr.
	LogWriter io.Writer
}

// ConfigFromEnv reads the configuration from the environment:
//
//	HBNB_TYPE_STORAGE   - "db" for PostgreSQL, anything else for the file engine
//	HBNB_ENV            - "test" drops all tables on start (db engine)
//	HBNB_FILE_PATH      - file engine path (default: file.json)
//	HBNB_DB_DSN         - PostgreSQL DSN (default: built from HBNB_PG_*)
//	HBNB_PG_USER        - (default: hbnb_dev)
//	HBNB_PG_PWD         - (default: hbnb_dev_pwd)
//	HBNB_PG_HOST        - (default: localhost)
//	HBNB_PG_PORT        - (default: 5432)
//	HBNB_PG_DB          - (default: hbnb_dev_db)
//	HBNB_SLOW_QUERY     - slow SQL warning threshold (default: 200ms)
//	HBNB_PASSWORD_HASH  - bcrypt (default) or md5
//	HBNB_LOG_LEVEL      - zerolog level (default: info)
//	HBNB_LOG_FILE       - log file (default: stderr)
func ConfigFromEnv() *Config {
	defaultDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("HBNB_PG_HOST", "localhost"),
		getEnv("HBNB_PG_PORT", "5432"),
		getEnv("HBNB_PG_USER", "hbnb_dev"),
		getEnv("HBNB_PG_PWD", "hbnb_dev_pwd"),
		getEnv("HBNB_PG_DB", "hbnb_dev_db"),
	)
	slow, err := time.ParseDuration(getEnv("HBNB_SLOW_QUERY", "200ms"))
	if err != nil {
		slow = 200 * time.Millisecond
	}
	return &Config{
		SlowQuery:    slow,
		Storage:      storage.ParseMode(os.Getenv("HBNB_TYPE_STORAGE")),
		FilePath:     getEnv("HBNB_FILE_PATH", "file.json"),
		DSN:          getEnv("HBNB_DB_DSN", defaultDSN),
		Env:          os.Getenv("HBNB_ENV"),
		PasswordHash: getEnv("HBNB_PASSWORD_HASH", "bcrypt"),
		LogLevel:     getEnv("HBNB_LOG_LEVEL", "info"),
		LogFile:      os.Getenv("HBNB_LOG_FILE"),
	}
}

// getEnv returns the value of key, or defaultValue when it is unset or
// empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
