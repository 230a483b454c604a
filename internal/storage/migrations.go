package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Catalog items table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS catalog_items (
					id TEXT PRIMARY KEY,
					catalog_type TEXT NOT NULL,
					name TEXT NOT NULL,
					slug TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					icon TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					metadata TEXT NOT NULL DEFAULT '',
					parent_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					level INTEGER NOT NULL DEFAULT 0,
					is_system BOOLEAN NOT NULL DEFAULT 0,
					user_id TEXT,
					sort_order INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					CHECK (is_system = (user_id IS NULL))
				)`,
				`CREATE UNIQUE INDEX idx_catalog_items_scope_slug
					ON catalog_items(catalog_type, COALESCE(parent_id, ''), slug)`,
				`CREATE INDEX idx_catalog_items_type_user ON catalog_items(catalog_type, user_id)`,
				`CREATE INDEX idx_catalog_items_parent ON catalog_items(parent_id)`,
				`CREATE INDEX idx_catalog_items_active ON catalog_items(is_active)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Domain reference tables",
		Up: func(tx *sql.Tx) error {
			// Each consuming domain references catalog items with
			// restrict-on-delete foreign keys, so a hard delete of an item
			// still in use fails at the database even if a reference lands
			// between the usage count and the delete.
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					type_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					amount REAL NOT NULL DEFAULT 0,
					occurred_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS investments (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS exercises (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					exercise_type_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					muscle_group_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					equipment_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS meals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					meal_category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS foods (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					unit_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS nutrition_goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS family_members (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					relationship_type_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS reminders (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS activities (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					category_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS social_circles (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					circle_type_id TEXT REFERENCES catalog_items(id) ON DELETE RESTRICT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Indexes for usage counting",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type_id)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_investments_category ON investments(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_budgets_category ON budgets(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_exercises_type ON exercises(exercise_type_id)`,
				`CREATE INDEX IF NOT EXISTS idx_exercises_muscle_group ON exercises(muscle_group_id)`,
				`CREATE INDEX IF NOT EXISTS idx_exercises_equipment ON exercises(equipment_id)`,
				`CREATE INDEX IF NOT EXISTS idx_meals_category ON meals(meal_category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_foods_category ON foods(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_foods_unit ON foods(unit_id)`,
				`CREATE INDEX IF NOT EXISTS idx_nutrition_goals_category ON nutrition_goals(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_family_members_relationship ON family_members(relationship_type_id)`,
				`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_reminders_category ON reminders(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_activities_category ON activities(category_id)`,
				`CREATE INDEX IF NOT EXISTS idx_social_circles_type ON social_circles(circle_type_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
