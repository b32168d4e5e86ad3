// Package fileref identifies filesystem entries by inode rather than by path.
//
// A FileRef pairs the identity of an entry with the path it was last seen at.
// Two refs with the same Identity denote the same record even when their
// KnownPath differs, which is what lets annotations survive renames and moves
// within one filesystem. Identities are not qualified by device, so entries on
// different mounted volumes may collide.
package fileref

import "fmt"

// FileRef is the identity of a filesystem entry plus its most recently
// observed path.
type FileRef struct {
	Identity  uint64
	KnownPath string
}

// New builds a FileRef from an identity and a path.
func New(identity uint64, path string) FileRef {
	return FileRef{Identity: identity, KnownPath: path}
}

// SameEntry reports whether both refs denote the same logical record.
func (r FileRef) SameEntry(other FileRef) bool {
	return r.Identity == other.Identity
}

func (r FileRef) String() string {
	return fmt.Sprintf("%s (inode %d)", r.KnownPath, r.Identity)
}
