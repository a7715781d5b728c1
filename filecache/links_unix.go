//go:build !windows

package filecache

import (
	"fmt"
	"io/fs"
	"syscall"
)

// linkCount returns the number of hard links of a file
func linkCount(path string, fi fs.FileInfo) (uint64, error) {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("cannot convert to syscall.Stat_t for %s", path)
	}
	return uint64(stat.Nlink), nil
}
