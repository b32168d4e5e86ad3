package fileref

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// IOError reports a failure to read metadata for a path or to enumerate a
// directory. It unwraps to the underlying cause so callers can test for
// fs.ErrNotExist, fs.ErrPermission or syscall.ENOTDIR.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err as an IOError for the given operation and path.
func NewIOError(op, path string, err error) error {
	// Strip the *fs.PathError layer, IOError already carries op and path.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether err was caused by a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsPermission reports whether err was caused by insufficient permissions.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// IsNotDirectory reports whether err was caused by a path that is not a directory.
func IsNotDirectory(err error) bool {
	return errors.Is(err, syscall.ENOTDIR)
}
