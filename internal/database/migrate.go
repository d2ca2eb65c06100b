package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema if it does not exist yet. It is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema() {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

func schema() []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL CHECK (role IN (%s)),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, sqlList([]models.Role{models.RoleStudent, models.RoleAdmin})),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS complaints (
			id            UUID PRIMARY KEY,
			owner_id      UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			category      TEXT NOT NULL CHECK (category IN (%s)),
			title         TEXT NOT NULL CHECK (title <> ''),
			description   TEXT NOT NULL CHECK (description <> ''),
			status        TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN (%s)),
			admin_remarks TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, sqlList(models.Categories), sqlList(models.Statuses)),
		`CREATE INDEX IF NOT EXISTS complaints_owner_created_idx ON complaints (owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS complaints_created_idx ON complaints (created_at DESC)`,
	}
}

// sqlList renders enum values as a quoted SQL list: 'a', 'b'
func sqlList[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
