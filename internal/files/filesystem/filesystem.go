package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo.
type FileInfo = fs.FileInfo

// FileSystemProvider opens files for reading.
type FileSystemProvider interface {
	// Open returns a reader for the file at path. The caller closes it.
	// A missing file yields an error matching fs.ErrNotExist.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads the whole file at path.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for path.
	Stat(path string) (FileInfo, error)
}
