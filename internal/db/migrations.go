package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	embeddedmigrations "github.com/terraincognita07/drinktab/migrations"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

type migration struct {
	Version  string
	Order    int
	Name     string
	Checksum string
	SQL      string
}

type appliedMigration struct {
	Version  string `gorm:"column:version"`
	Checksum string `gorm:"column:checksum"`
}

// migrator applies the forward-only SQL files embedded for one dialect.
// Every file runs in its own transaction and is recorded in schema_migrations.
type migrator struct {
	database *gorm.DB
	dialect  string
	logger   zerolog.Logger
}

func migrate(database *gorm.DB, dialect string, logger zerolog.Logger) error {
	return (&migrator{database: database, dialect: dialect, logger: logger}).run()
}

func (m *migrator) run() error {
	if err := m.ensureTable(); err != nil {
		return err
	}

	migrations, err := loadMigrations(m.dialect)
	if err != nil {
		return err
	}

	applied, err := m.applied()
	if err != nil {
		return err
	}

	pending := 0
	for _, item := range migrations {
		if checksum, ok := applied[item.Version]; ok {
			if checksum != "" && checksum != item.Checksum {
				m.logger.Warn().Str("migration", item.Name).Msg("applied migration was modified after it ran")
			}
			continue
		}

		if err := m.apply(item); err != nil {
			return err
		}
		m.logger.Info().Str("migration", item.Name).Msg("migration applied")
		pending++
	}

	m.logger.Debug().Int("applied", pending).Int("total", len(migrations)).Msg("schema up to date")
	return nil
}

func (m *migrator) ensureTable() error {
	timestampType := "DATETIME"
	if m.dialect == DialectPostgres {
		timestampType = "TIMESTAMPTZ"
	}

	statement := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL DEFAULT '',
  applied_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, timestampType)
	if err := m.database.Exec(statement).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (m *migrator) applied() (map[string]string, error) {
	rows := make([]appliedMigration, 0)
	if err := m.database.Raw(`SELECT version, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	versions := make(map[string]string, len(rows))
	for _, row := range rows {
		versions[row.Version] = row.Checksum
	}
	return versions, nil
}

func (m *migrator) apply(item migration) error {
	statements := splitStatements(item.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", item.Name)
	}

	return m.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			exists, err := addedColumnExists(tx, m.dialect, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", item.Name, err)
			}
			if exists {
				continue
			}

			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", item.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			item.Version,
			item.Name,
			item.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", item.Name, err)
		}
		return nil
	})
}

// loadMigrations returns the dialect's embedded files ordered by their
// numeric prefix. Files that do not look like NNNN_name.sql are ignored.
func loadMigrations(dialect string) ([]migration, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}

	paths, err := fs.Glob(embeddedmigrations.Files, dialect+"/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded migrations: %w", err)
	}

	migrations := make([]migration, 0, len(paths))
	byVersion := make(map[string]string, len(paths))
	for _, filePath := range paths {
		name := path.Base(filePath)
		matches := migrationNamePattern.FindStringSubmatch(name)
		if matches == nil {
			continue
		}

		version := matches[1]
		if previous, duplicate := byVersion[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}

		content, err := fs.ReadFile(embeddedmigrations.Files, filePath)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(content)

		migrations = append(migrations, migration{
			Version:  version,
			Order:    order,
			Name:     name,
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

// splitStatements drops full-line "--" comments and splits on semicolons.
func splitStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	statements := make([]string, 0)
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// addedColumnExists reports whether statement is an ADD COLUMN whose column is
// already present, which keeps upgrades of pre-migration databases idempotent.
func addedColumnExists(database *gorm.DB, dialect string, statement string) (bool, error) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false, nil
	}

	table := unquoteIdentifier(matches[1])
	column := unquoteIdentifier(matches[2])

	var names []string
	var err error
	if dialect == DialectPostgres {
		err = database.Raw(
			`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?`,
			table,
		).Scan(&names).Error
	} else {
		err = database.Raw(`SELECT name FROM pragma_table_info(?)`, table).Scan(&names).Error
	}
	if err != nil {
		return false, fmt.Errorf("load columns for %s: %w", table, err)
	}

	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
