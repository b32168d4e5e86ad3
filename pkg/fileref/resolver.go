package fileref

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoIdentity is returned when the platform does not expose an inode for
// an entry.
var ErrNoIdentity = errors.New("filesystem entry has no inode identity")

// SymlinkPolicy decides whether a symbolic link is identified by itself or by
// the entry it points to. The same policy applies to listing entries and to
// arbitrary paths.
type SymlinkPolicy string

const (
	// NoFollow identifies the link itself (lstat semantics).
	NoFollow SymlinkPolicy = "nofollow"
	// Follow identifies the link target (stat semantics).
	Follow SymlinkPolicy = "follow"
)

// ParseSymlinkPolicy converts a configuration value into a SymlinkPolicy.
// An empty value selects NoFollow.
func ParseSymlinkPolicy(value string) (SymlinkPolicy, error) {
	switch SymlinkPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", NoFollow:
		return NoFollow, nil
	case Follow:
		return Follow, nil
	default:
		return "", fmt.Errorf("unknown symlink policy '%s' (expected '%s' or '%s')", value, NoFollow, Follow)
	}
}

// Options controls how paths are turned into FileRefs.
type Options struct {
	Symlinks SymlinkPolicy
	// Canonicalize makes paths absolute and clean before they are recorded.
	// Under Follow, symlinks inside the path are evaluated as well.
	Canonicalize bool
}

// Resolver derives FileRefs from paths and directory entries.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver, defaulting an unset policy to NoFollow.
func NewResolver(opts Options) *Resolver {
	if opts.Symlinks == "" {
		opts.Symlinks = NoFollow
	}
	return &Resolver{opts: opts}
}

// Options returns the resolver configuration.
func (r *Resolver) Options() Options {
	return r.opts
}

// FromListing resolves an entry produced by reading dir. The entry's own
// metadata is used unless the policy asks to follow a symlink.
func (r *Resolver) FromListing(dir string, entry fs.DirEntry) (FileRef, error) {
	path := filepath.Join(dir, entry.Name())

	var info fs.FileInfo
	var err error
	if r.opts.Symlinks == Follow && entry.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = entry.Info()
	}
	if err != nil {
		return FileRef{}, NewIOError("stat", path, err)
	}

	identity, err := inodeOf(info)
	if err != nil {
		return FileRef{}, NewIOError("stat", path, err)
	}

	return New(identity, path), nil
}

// FromPath resolves an arbitrary path with a metadata lookup. The path is
// recorded as given unless canonicalization is enabled.
func (r *Resolver) FromPath(path string) (FileRef, error) {
	known, err := r.Canonical(path)
	if err != nil {
		return FileRef{}, err
	}

	var info fs.FileInfo
	if r.opts.Symlinks == Follow {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}
	if err != nil {
		return FileRef{}, NewIOError("stat", path, err)
	}

	identity, err := inodeOf(info)
	if err != nil {
		return FileRef{}, NewIOError("stat", path, err)
	}

	return New(identity, known), nil
}

// Canonical returns the form of path that gets recorded as a KnownPath.
// Without canonicalization the path is returned unchanged.
func (r *Resolver) Canonical(path string) (string, error) {
	if !r.opts.Canonicalize {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", NewIOError("abs", path, err)
	}
	if r.opts.Symlinks != Follow {
		return abs, nil
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", NewIOError("readlink", path, err)
	}
	return resolved, nil
}
