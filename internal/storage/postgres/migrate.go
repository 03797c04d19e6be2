package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// The dedupe index backs the ON CONFLICT clause and must not exist in append
// mode, where duplicate (submission_id, ticker) rows are the contract. It is
// reconciled at startup rather than created by a migration so flipping
// database.dedupe works in both directions.
const (
	createDedupeIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS stocks_submission_ticker_idx
    ON stocks (submission_id, ticker)`
	dropDedupeIndexSQL = `DROP INDEX IF EXISTS stocks_submission_ticker_idx`
)

// Migrate applies all embedded SQL files in lexical order, then reconciles
// the dedupe index with the configured insert mode. Every statement is
// idempotent, so running at each startup is safe.
func Migrate(ctx context.Context, pool pgxPool, dedupe bool) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	indexSQL := dropDedupeIndexSQL
	if dedupe {
		indexSQL = createDedupeIndexSQL
	}
	if _, err := pool.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("reconcile dedupe index: %w", err)
	}
	return nil
}
