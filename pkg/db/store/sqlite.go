package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/filechest/pkg/db/migrations"
	"github.com/mwantia/filechest/pkg/db/models"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/mwantia/filechest/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements AnnotationStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

var _ container.LifecycleService = (*SQLiteStore)(nil)

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// Path returns the database file the store was opened with
func (s *SQLiteStore) Path() string {
	return s.path
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
	Logger   log.LoggerService
}

// gormWriter routes gorm's log output through the application logger.
type gormWriter struct {
	log log.LoggerService
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Info(format, args...)
}

// NewSQLiteStore opens the annotation database, creating its directory and
// file on first use. Foreign keys are enforced on every connection.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, wrap("open", fmt.Errorf("failed to create database directory: %w", err))
		}
	}

	gormLogger := logger.Default.LogMode(cfg.LogLevel)
	if cfg.Logger != nil {
		gormLogger = logger.New(gormWriter{log: cfg.Logger}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
		})
	}

	dsn := cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, wrap("open", fmt.Errorf("failed to open sqlite database: %w", err))
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("connect", fmt.Errorf("failed to get database instance: %w", err))
	}

	// One connection serializes every store access.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return wrap("connect", sqlDB.PingContext(ctx))
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("close", fmt.Errorf("failed to get database instance: %w", err))
	}
	return wrap("close", sqlDB.Close())
}

// Init connects the store once it is resolved from a service container.
func (s *SQLiteStore) Init(ctx context.Context) error {
	return s.Connect(ctx)
}

// Cleanup closes the store during service container shutdown.
func (s *SQLiteStore) Cleanup(ctx context.Context) error {
	return s.Close()
}

// Migrate applies all pending schema migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := migrations.NewMigrator(s.db).Migrate(ctx)
	return wrap("migrate", err)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("health", fmt.Errorf("failed to get database instance: %w", err))
	}
	return wrap("health", sqlDB.PingContext(ctx))
}

// Note operations

// GetNote refreshes the known path of an existing record before reading its
// note, so stale paths heal on every read.
func (s *SQLiteStore) GetNote(ctx context.Context, ref fileref.FileRef) (string, error) {
	db := s.db.WithContext(ctx)
	identity := models.IdentityColumn(ref.Identity)

	if ref.KnownPath != "" {
		err := db.Model(&models.FileRecord{}).
			Where("identity = ?", identity).
			Update("known_path", ref.KnownPath).Error
		if err != nil {
			return "", wrap("get note", err)
		}
	}

	var records []models.FileRecord
	if err := db.Where("identity = ?", identity).Limit(1).Find(&records).Error; err != nil {
		return "", wrap("get note", err)
	}

	if len(records) == 0 || records[0].Note == nil {
		return "", ErrNotFound
	}
	return *records[0].Note, nil
}

func (s *SQLiteStore) SetNote(ctx context.Context, ref fileref.FileRef, note string) error {
	record := models.FileRecord{
		Identity:  models.IdentityColumn(ref.Identity),
		KnownPath: nullable(ref.KnownPath),
		Note:      &note,
	}

	columns := []string{"note"}
	if record.KnownPath != nil {
		columns = append(columns, "known_path")
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(&record).Error
	return wrap("set note", err)
}

// Tag operations

func (s *SQLiteStore) GetTags(ctx context.Context, ref fileref.FileRef) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Joins("JOIN tag_relations ON tag_relations.tag_id = file_tags.tag_id").
		Where("tag_relations.identity = ?", models.IdentityColumn(ref.Identity)).
		Order("file_tags.tag_id").
		Pluck("file_tags.tag_name", &names).Error
	if err != nil {
		return nil, wrap("get tags", err)
	}
	return names, nil
}

// SetTags replaces every relation of the identity with the given tags. Names
// are trimmed, empty names are dropped and duplicates collapse into one edge.
func (s *SQLiteStore) SetTags(ctx context.Context, ref fileref.FileRef, tags []string) error {
	names := NormalizeTags(tags)
	identity := models.IdentityColumn(ref.Identity)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity = ?", identity).Delete(&models.TagRelation{}).Error; err != nil {
			return err
		}

		for _, name := range names {
			if err := addTag(tx, ref, name); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("set tags", err)
}

// AddTag attaches a single tag, creating the vocabulary entry and the file
// record when missing. Adding an existing edge is a no-op.
func (s *SQLiteStore) AddTag(ctx context.Context, ref fileref.FileRef, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTag
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addTag(tx, ref, name)
	})
	return wrap("add tag", err)
}

func (s *SQLiteStore) GetFilesByTag(ctx context.Context, name string) ([]fileref.FileRef, error) {
	var records []models.FileRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN tag_relations ON tag_relations.identity = file_notes.identity").
		Joins("JOIN file_tags ON file_tags.tag_id = tag_relations.tag_id").
		Where("file_tags.tag_name = ?", strings.TrimSpace(name)).
		Order("file_notes.known_path").
		Order("file_notes.identity").
		Find(&records).Error
	if err != nil {
		return nil, wrap("get files by tag", err)
	}

	refs := make([]fileref.FileRef, 0, len(records))
	for _, record := range records {
		path := ""
		if record.KnownPath != nil {
			path = *record.KnownPath
		}
		refs = append(refs, fileref.New(record.Inode(), path))
	}
	return refs, nil
}

// ListTags returns the whole vocabulary with the number of tagged files,
// including tags that are no longer attached to anything.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]models.TagUsage, error) {
	usage := []models.TagUsage{}
	err := s.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("file_tags.tag_name AS name, COUNT(tag_relations.identity) AS files").
		Joins("LEFT JOIN tag_relations ON tag_relations.tag_id = file_tags.tag_id").
		Group("file_tags.tag_id, file_tags.tag_name").
		Order("file_tags.tag_name").
		Scan(&usage).Error
	if err != nil {
		return nil, wrap("list tags", err)
	}
	return usage, nil
}

func addTag(tx *gorm.DB, ref fileref.FileRef, name string) error {
	tag := models.Tag{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return fmt.Errorf("failed to create tag '%s': %w", name, err)
	}

	// The insert is ignored for known names, so read the id back.
	if err := tx.Where("tag_name = ?", name).Take(&tag).Error; err != nil {
		return fmt.Errorf("failed to look up tag '%s': %w", name, err)
	}

	if err := ensureFile(tx, ref); err != nil {
		return err
	}

	relation := models.TagRelation{
		TagID:    tag.ID,
		Identity: models.IdentityColumn(ref.Identity),
	}
	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&relation).Error
	if err != nil {
		return fmt.Errorf("failed to relate tag '%s': %w", name, err)
	}
	return nil
}

// ensureFile creates a note-less record for the identity, or refreshes the
// known path of an existing one.
func ensureFile(tx *gorm.DB, ref fileref.FileRef) error {
	record := models.FileRecord{
		Identity:  models.IdentityColumn(ref.Identity),
		KnownPath: nullable(ref.KnownPath),
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoNothing: true,
	}
	if record.KnownPath != nil {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"known_path"}),
		}
	}

	if err := tx.Clauses(conflict).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record file %d: %w", ref.Identity, err)
	}
	return nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
