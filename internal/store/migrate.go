package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/sql/migrations"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration and returns how many ran
func Migrate(ctx context.Context, sqlDB *sql.DB) (int, error) {
	log := logging.Logger

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("running migrations: %w", err)
	}

	for _, r := range results {
		log.Debug().Int64("version", r.Source.Version).Str("path", r.Source.Path).Msg("migration applied")
	}
	log.Debug().Int("applied", len(results)).Msg("database migrations completed")
	return len(results), nil
}

// ConfigureSQLite sets up SQLite for a single writer with concurrent readers
func ConfigureSQLite(sqlDB *sql.DB) error {
	log := logging.Logger

	pragmas := []struct {
		stmt string
		what string
	}{
		{"PRAGMA journal_mode=WAL", "setting WAL mode"},
		{"PRAGMA busy_timeout=5000", "setting busy timeout"},
		{"PRAGMA synchronous=NORMAL", "setting synchronous mode"},
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p.stmt); err != nil {
			return fmt.Errorf("%s: %w", p.what, err)
		}
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	log.Debug().
		Str("journal_mode", "WAL").
		Str("busy_timeout", "5000ms").
		Msg("SQLite configured")
	return nil
}
