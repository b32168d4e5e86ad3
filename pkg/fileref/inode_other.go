//go:build !unix

package fileref

import "io/fs"

func inodeOf(info fs.FileInfo) (uint64, error) {
	return 0, ErrNoIdentity
}
