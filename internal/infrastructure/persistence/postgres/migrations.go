package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration is a single versioned schema change.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// Migrations returns all migrations in order.
func Migrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_catalog_tables",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS courses (
					id          TEXT PRIMARY KEY,
					code        TEXT NOT NULL UNIQUE,
					slug        TEXT NOT NULL UNIQUE,
					title       TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					level_tag   TEXT NOT NULL DEFAULT 'beginner',
					total_units INTEGER NOT NULL DEFAULT 0,
					cover_icon  TEXT NOT NULL DEFAULT '',
					created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS sections (
					id          TEXT PRIMARY KEY,
					course_id   TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
					title       TEXT NOT NULL,
					order_index INTEGER NOT NULL DEFAULT 0
				);

				CREATE INDEX IF NOT EXISTS idx_sections_course
					ON sections(course_id, order_index);

				CREATE TABLE IF NOT EXISTS units (
					id           TEXT PRIMARY KEY,
					slug         TEXT NOT NULL UNIQUE,
					section_id   TEXT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
					course_id    TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
					course_code  TEXT NOT NULL,
					title        TEXT NOT NULL,
					content_type TEXT NOT NULL DEFAULT 'video',
					video_url    TEXT NOT NULL DEFAULT '',
					xp_reward    INTEGER NOT NULL DEFAULT 0 CHECK (xp_reward >= 0),
					free_preview BOOLEAN NOT NULL DEFAULT FALSE,
					order_index  INTEGER NOT NULL DEFAULT 0
				);

				CREATE INDEX IF NOT EXISTS idx_units_section
					ON units(section_id, order_index);
				CREATE INDEX IF NOT EXISTS idx_units_course
					ON units(course_id);
			`,
		},
		{
			Version: 2,
			Name:    "create_entitlements",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS entitlements (
					id          TEXT PRIMARY KEY,
					user_id     TEXT NOT NULL,
					course_code TEXT NOT NULL,
					granted_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, course_code)
				);

				CREATE INDEX IF NOT EXISTS idx_entitlements_user
					ON entitlements(user_id);
			`,
		},
		{
			Version: 3,
			Name:    "create_xp_accounts",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS xp_accounts (
					user_id      TEXT PRIMARY KEY,
					display_name TEXT NOT NULL DEFAULT '',
					avatar_url   TEXT,
					total_xp     BIGINT NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
					weekly_xp    BIGINT NOT NULL DEFAULT 0 CHECK (weekly_xp >= 0),
					week_start   TIMESTAMPTZ NOT NULL,
					created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_xp_accounts_total
					ON xp_accounts(total_xp DESC, user_id ASC);
				CREATE INDEX IF NOT EXISTS idx_xp_accounts_weekly
					ON xp_accounts(weekly_xp DESC, user_id ASC);
			`,
		},
		{
			Version: 4,
			Name:    "create_unit_progress",
			UpSQL: `
				CREATE TABLE IF NOT EXISTS user_unit_progress (
					id           TEXT PRIMARY KEY,
					user_id      TEXT NOT NULL,
					unit_id      TEXT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
					completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (user_id, unit_id)
				);

				CREATE INDEX IF NOT EXISTS idx_progress_user
					ON user_unit_progress(user_id);
			`,
		},
	}
}

// Migrator applies migrations and tracks the applied version in
// schema_migrations.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

// Up applies all pending migrations in order.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	for _, mig := range Migrations() {
		if mig.Version <= current {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("%w: %s (v%d): %v", ErrMigrationFailed, mig.Name, mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (m *Migrator) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.conn.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			mig.Version, mig.Name,
		)
		return err
	})
}
