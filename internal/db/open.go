package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var errEmptyConnectionString = errors.New("database connection string is empty")

// Connection is a parsed DATABASE_URL.
type Connection struct {
	Dialect string
	DSN     string
	Path    string
}

// ParseConnection accepts sqlite3://path, sqlite://path, file:path, a bare
// filesystem path, or a postgres:// / postgresql:// URL.
func ParseConnection(raw string) (Connection, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Connection{}, errEmptyConnectionString
	}

	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Connection{Dialect: DialectPostgres, DSN: value}, nil
	case strings.HasPrefix(lower, "sqlite3://"):
		return sqliteConnection(value[len("sqlite3://"):])
	case strings.HasPrefix(lower, "sqlite://"):
		return sqliteConnection(value[len("sqlite://"):])
	case strings.HasPrefix(lower, "file:"):
		return sqliteConnection(value[len("file:"):])
	case strings.Contains(value, "://"):
		scheme, _, _ := strings.Cut(value, "://")
		return Connection{}, fmt.Errorf("unsupported database scheme %q", scheme)
	default:
		return sqliteConnection(value)
	}
}

func sqliteConnection(path string) (Connection, error) {
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimSpace(path)
	if path == "" {
		return Connection{}, errEmptyConnectionString
	}
	return Connection{
		Dialect: DialectSQLite,
		DSN:     fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", path),
		Path:    path,
	}, nil
}

// Open connects to the configured database and applies pending migrations.
func Open(connectionString string, logger zerolog.Logger) (*gorm.DB, error) {
	connection, err := ParseConnection(connectionString)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch connection.Dialect {
	case DialectPostgres:
		dialector = postgres.Open(connection.DSN)
	default:
		if err := os.MkdirAll(filepath.Dir(connection.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dialector = sqlite.Open(connection.DSN)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(
			&logger,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", connection.Dialect, err)
	}

	if err := migrate(database, connection.Dialect, logger); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

// OpenSQLite opens a sqlite database file, mostly for tests and the CLI.
func OpenSQLite(dbPath string) (*gorm.DB, error) {
	return Open("sqlite3://"+dbPath, zerolog.Nop())
}
