// Package listing produces the visible, ordered entries of a directory as
// FileRefs.
//
// Hidden entries are those whose name starts with the byte '.'. Entries are
// ordered by their full path, compared byte-wise. An entry whose metadata
// cannot be read is skipped and reported as a Diagnostic instead of failing
// the whole listing.
package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/mwantia/filechest/pkg/log"
)

// Diagnostic describes an entry that was left out of a listing.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("skipped %s: %v", d.Path, d.Err)
}

// Reporter receives diagnostics for skipped entries.
type Reporter func(Diagnostic)

// Options configures an Enumerator.
type Options struct {
	// Ignore holds glob patterns matched against entry names. Matching
	// entries are excluded regardless of the hidden flag.
	Ignore   []string
	Reporter Reporter
}

// Enumerator lists directories through a Resolver.
type Enumerator struct {
	resolver *fileref.Resolver
	ignore   []glob.Glob
	reporter Reporter
	log      log.LoggerService
}

func NewEnumerator(resolver *fileref.Resolver, logger log.LoggerService, opts Options) (*Enumerator, error) {
	e := &Enumerator{
		resolver: resolver,
		reporter: opts.Reporter,
		log:      logger,
	}

	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern '%s': %w", pattern, err)
		}
		e.ignore = append(e.ignore, g)
	}

	return e, nil
}

// IsHidden reports whether a name is hidden. Only the first byte is inspected.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// List returns the entries of dir as FileRefs sorted by path. Failing to read
// the directory itself is an error; failing to read one entry is not.
func (e *Enumerator) List(dir string, showHidden bool) ([]fileref.FileRef, error) {
	dir, err := e.resolver.Canonical(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fileref.NewIOError("readdir", dir, err)
	}

	refs := make([]fileref.FileRef, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !showHidden && IsHidden(name) {
			continue
		}
		if e.ignored(name) {
			continue
		}

		ref, err := e.resolver.FromListing(dir, entry)
		if err != nil {
			e.report(Diagnostic{Path: filepath.Join(dir, name), Err: err})
			continue
		}
		refs = append(refs, ref)
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].KnownPath < refs[j].KnownPath
	})

	return refs, nil
}

func (e *Enumerator) ignored(name string) bool {
	for _, pattern := range e.ignore {
		if pattern.Match(name) {
			return true
		}
	}
	return false
}

func (e *Enumerator) report(d Diagnostic) {
	if e.log != nil {
		e.log.Warn("%s", d)
	}
	if e.reporter != nil {
		e.reporter(d)
	}
}
