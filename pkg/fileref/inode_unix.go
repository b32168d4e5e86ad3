//go:build unix

package fileref

import (
	"io/fs"
	"syscall"
)

func inodeOf(info fs.FileInfo) (uint64, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return 0, ErrNoIdentity
	}
	return uint64(stat.Ino), nil
}
