package chest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/filechest/internal/config"
	"github.com/mwantia/filechest/pkg/db/models"
	"github.com/mwantia/filechest/pkg/db/store"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/mwantia/filechest/pkg/listing"
	"github.com/mwantia/filechest/pkg/log"
)

// ErrNotOpen is returned by operations called before Open or after Close.
var ErrNotOpen = errors.New("file chest is not open")

// Chest owns the annotation store and the components that feed it. It is
// the single entry point used by the command line.
type Chest struct {
	mutex sync.Mutex

	cfg *config.BaseConfig
	sc  *container.ServiceContainer
	log *log.LoggerServiceImpl

	path     string
	store    store.AnnotationStore
	logger   log.LoggerService
	resolver *fileref.Resolver
	lister   *listing.Enumerator
}

// Annotation is everything stored for one file.
type Annotation struct {
	Ref     fileref.FileRef
	Note    string
	HasNote bool
	Tags    []string
}

func New(cfg *config.BaseConfig) *Chest {
	return NewWithLogger(cfg, log.NewLoggerService("filechest", cfg.Log))
}

func NewWithLogger(cfg *config.BaseConfig, logger *log.LoggerServiceImpl) *Chest {
	return &Chest{
		cfg: cfg,
		log: logger,
	}
}

func (c *Chest) setupServices(sc *container.ServiceContainer, s *store.SQLiteStore) error {
	errs := container.Errors{}

	c.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[*log.LoggerServiceImpl](sc,
		container.With[log.LoggerService](),
		container.WithInstance(c.log),
		container.AsSingleton()))

	c.log.Debug("Registering 'AnnotationStore'...")
	errs.Add(container.Register[*store.SQLiteStore](sc,
		container.With[store.AnnotationStore](),
		container.WithInstance(s),
		container.AsSingleton()))

	return errs.Errors()
}

// Open resolves the database location, opens and migrates the store and
// prepares the resolver and directory enumerator. The store is connected by
// resolving it from the service container, which also takes over closing it.
func (c *Chest) Open(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.store != nil {
		return nil
	}

	policy, err := fileref.ParseSymlinkPolicy(c.cfg.Resolver.Symlinks)
	if err != nil {
		return err
	}
	resolver := fileref.NewResolver(fileref.Options{
		Symlinks:     policy,
		Canonicalize: c.cfg.Resolver.Canonicalize,
	})

	path, err := c.cfg.Store.DatabasePath(c.cfg.Debug)
	if err != nil {
		return err
	}
	level, err := config.ParseStoreLogLevel(c.cfg.Store.LogLevel)
	if err != nil {
		return err
	}

	c.log.Debug("Opening annotation store at '%s'", path)
	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:     path,
		LogLevel: level,
		Logger:   c.log.Named("store"),
	})
	if err != nil {
		return err
	}

	sc := container.NewServiceContainer()
	if err := c.setupServices(sc, s); err != nil {
		s.Close()
		return fmt.Errorf("failed to register services: %w", err)
	}

	annotations, err := container.Resolve[store.AnnotationStore](ctx, sc)
	if err != nil {
		// The store only joins the cleanup list once Init succeeded.
		s.Close()
		return fmt.Errorf("failed to resolve annotation store: %w", err)
	}

	logger, err := container.Resolve[log.LoggerService](ctx, sc)
	if err != nil {
		return c.abort(ctx, sc, fmt.Errorf("failed to resolve logger: %w", err))
	}

	lister, err := listing.NewEnumerator(resolver, logger.Named("listing"), listing.Options{
		Ignore: c.cfg.Listing.Ignore,
	})
	if err != nil {
		return c.abort(ctx, sc, err)
	}

	if err := annotations.Migrate(ctx); err != nil {
		return c.abort(ctx, sc, err)
	}

	c.sc = sc
	c.path = path
	c.store = annotations
	c.logger = logger
	c.resolver = resolver
	c.lister = lister
	return nil
}

// abort releases everything resolved by a failed Open.
func (c *Chest) abort(ctx context.Context, sc *container.ServiceContainer, err error) error {
	if cerr := sc.Cleanup(ctx); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// Close shuts down the service container, which closes the store. The
// container gets the configured shutdown timeout to clean up.
func (c *Chest) Close(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.store == nil {
		return nil
	}

	timeout, err := time.ParseDuration(c.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 5 seconds if error
		timeout = 5 * time.Second
	}

	shutdown, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = c.sc.Cleanup(shutdown)

	c.sc = nil
	c.store = nil
	c.logger = nil
	c.resolver = nil
	c.lister = nil

	if err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}
	return nil
}

// Config returns the configuration the chest was created with.
func (c *Chest) Config() *config.BaseConfig {
	return c.cfg
}

// Path returns the database file of an open chest.
func (c *Chest) Path() string {
	return c.path
}

// Store exposes the annotation store of an open chest.
func (c *Chest) Store() (store.AnnotationStore, error) {
	if c.store == nil {
		return nil, ErrNotOpen
	}
	return c.store, nil
}

// Resolve turns a user supplied path into a FileRef.
func (c *Chest) Resolve(path string) (fileref.FileRef, error) {
	if c.resolver == nil {
		return fileref.FileRef{}, ErrNotOpen
	}
	return c.resolver.FromPath(path)
}

// Browse answers a query. Directory queries go through the enumerator, tag
// queries go straight to the store.
func (c *Chest) Browse(ctx context.Context, query Query, showHidden bool) ([]fileref.FileRef, error) {
	if c.store == nil {
		return nil, ErrNotOpen
	}

	switch q := query.(type) {
	case PathQuery:
		return c.lister.List(q.Dir, showHidden)
	case TagQuery:
		return c.store.GetFilesByTag(ctx, q.Name)
	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}
}

// Enter lists the selected entry as a directory.
func (c *Chest) Enter(ctx context.Context, ref fileref.FileRef, showHidden bool) ([]fileref.FileRef, error) {
	return c.Browse(ctx, PathQuery{Dir: ref.KnownPath}, showHidden)
}

// Select loads the note and tags of a file. A file without a note is not an
// error, HasNote is false instead.
func (c *Chest) Select(ctx context.Context, ref fileref.FileRef) (Annotation, error) {
	if c.store == nil {
		return Annotation{}, ErrNotOpen
	}

	annotation := Annotation{Ref: ref}

	note, err := c.store.GetNote(ctx, ref)
	switch {
	case err == nil:
		annotation.Note = note
		annotation.HasNote = true
	case errors.Is(err, store.ErrNotFound):
	default:
		return Annotation{}, err
	}

	tags, err := c.store.GetTags(ctx, ref)
	if err != nil {
		return Annotation{}, err
	}
	annotation.Tags = tags

	return annotation, nil
}

func (c *Chest) SubmitNote(ctx context.Context, ref fileref.FileRef, text string) error {
	if c.store == nil {
		return ErrNotOpen
	}

	if err := c.store.SetNote(ctx, ref, text); err != nil {
		c.logger.Debug("Failed to store note for %s: %v", ref, err)
		return err
	}
	c.logger.Debug("Stored note for %s", ref)
	return nil
}

// SubmitTags replaces the tags of a file with a comma separated list.
func (c *Chest) SubmitTags(ctx context.Context, ref fileref.FileRef, text string) error {
	if c.store == nil {
		return ErrNotOpen
	}

	tags := ParseTagList(text)
	if err := c.store.SetTags(ctx, ref, tags); err != nil {
		c.logger.Debug("Failed to store tags for %s: %v", ref, err)
		return err
	}
	c.logger.Debug("Stored %d tags for %s", len(tags), ref)
	return nil
}

// Tags lists the tag vocabulary with usage counts.
func (c *Chest) Tags(ctx context.Context) ([]models.TagUsage, error) {
	if c.store == nil {
		return nil, ErrNotOpen
	}
	return c.store.ListTags(ctx)
}

// AddTag attaches one tag to a file without touching its other tags.
func (c *Chest) AddTag(ctx context.Context, ref fileref.FileRef, name string) error {
	if c.store == nil {
		return ErrNotOpen
	}
	return c.store.AddTag(ctx, ref, name)
}

// Run opens a chest for the duration of fn and closes it afterwards.
func Run(ctx context.Context, cfg *config.BaseConfig, fn func(c *Chest) error) (err error) {
	c := New(cfg)
	if err := c.Open(ctx); err != nil {
		return fmt.Errorf("failed to open file chest: %w", err)
	}
	defer func() {
		if cerr := c.Close(context.Background()); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(c)
}
