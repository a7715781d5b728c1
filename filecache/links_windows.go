//go:build windows

package filecache

import "io/fs"

// linkCount is not available on Windows; every regular file counts as one link
func linkCount(string, fs.FileInfo) (uint64, error) {
	return 1, nil
}
