package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/filechest/pkg/db/models"
	"gorm.io/gorm"
)

// ErrNothingToRollback is returned by Rollback when no migration has been applied.
var ErrNothingToRollback = errors.New("no migrations to rollback")

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// migrationHistory records applied versions in the database itself
type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

// MigrationStatus reports whether a known migration has been applied.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
	AppliedAt   time.Time
}

// Migrator applies and reverts the annotation schema.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

// Migrate applies every pending migration in version order and returns how
// many were applied. Each migration runs in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}

		if err := m.runMigration(ctx, migration); err != nil {
			return count, fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
		count++
	}

	return count, nil
}

// Rollback reverts the most recently applied migration and returns it.
func (m *Migrator) Rollback(ctx context.Context) (*Migration, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var last migrationHistory
	err := m.db.WithContext(ctx).Order("version DESC").Limit(1).Find(&last).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	if last.ID == 0 {
		return nil, ErrNothingToRollback
	}

	migration := m.find(last.Version)
	if migration == nil {
		return nil, fmt.Errorf("migration %d not found", last.Version)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		if err := tx.Delete(&last).Error; err != nil {
			return fmt.Errorf("failed to update migration history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return migration, nil
}

// Status lists every known migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		status := MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
		}
		if h, ok := applied[migration.Version]; ok {
			status.Applied = true
			status.AppliedAt = time.Unix(h.AppliedAt, 0).UTC()
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Latest returns the highest known migration version.
func (m *Migrator) Latest() int {
	latest := 0
	for _, migration := range m.migrations {
		if migration.Version > latest {
			latest = migration.Version
		}
	}
	return latest
}

func (m *Migrator) ensureHistory(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return fmt.Errorf("failed to create migration history table: %w", err)
	}
	return nil
}

func (m *Migrator) history(ctx context.Context) (map[int]migrationHistory, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var rows []migrationHistory
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}

	applied := make(map[int]migrationHistory, len(rows))
	for _, row := range rows {
		applied[row.Version] = row
	}
	return applied, nil
}

func (m *Migrator) find(version int) *Migration {
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			return &m.migrations[i]
		}
	}
	return nil
}

func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return err
		}

		return tx.Create(&migrationHistory{
			Version:     migration.Version,
			Description: migration.Description,
		}).Error
	})
}

// allMigrations returns all migrations in order
func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial annotation schema",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.FileRecord{},
					&models.Tag{},
					&models.TagRelation{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.TagRelation{},
					&models.Tag{},
					&models.FileRecord{},
				)
			},
		},
		{
			Version:     2,
			Description: "Index known paths for reverse lookups",
			Up: func(db *gorm.DB) error {
				return db.Exec("CREATE INDEX IF NOT EXISTS idx_file_notes_known_path ON file_notes(known_path)").Error
			},
			Down: func(db *gorm.DB) error {
				return db.Exec("DROP INDEX IF EXISTS idx_file_notes_known_path").Error
			},
		},
	}
}
