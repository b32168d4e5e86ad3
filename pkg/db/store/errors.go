package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a file has no note. It is the normal state of
// an unannotated file rather than a storage fault.
var ErrNotFound = errors.New("not found")

// ErrEmptyTag is returned by AddTag for a name that is blank after trimming.
var ErrEmptyTag = errors.New("tag name is empty")

// StoreError wraps a failure of the backing database: constraint violations,
// connection problems or rows that could not be read.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// NormalizeTags trims every name, drops names that are empty after trimming
// and removes duplicates while keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))

	for _, tag := range tags {
		name := strings.TrimSpace(tag)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
