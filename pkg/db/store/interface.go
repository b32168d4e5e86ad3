package store

import (
	"context"

	"github.com/mwantia/filechest/pkg/db/models"
	"github.com/mwantia/filechest/pkg/fileref"
)

// AnnotationStore defines the persistence operations for notes and tags.
// Every operation is keyed by FileRef.Identity; KnownPath is only recorded.
type AnnotationStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Note operations
	GetNote(ctx context.Context, ref fileref.FileRef) (string, error)
	SetNote(ctx context.Context, ref fileref.FileRef, note string) error

	// Tag operations
	GetTags(ctx context.Context, ref fileref.FileRef) ([]string, error)
	SetTags(ctx context.Context, ref fileref.FileRef, tags []string) error
	AddTag(ctx context.Context, ref fileref.FileRef, name string) error
	GetFilesByTag(ctx context.Context, name string) ([]fileref.FileRef, error)
	ListTags(ctx context.Context) ([]models.TagUsage, error)
}
