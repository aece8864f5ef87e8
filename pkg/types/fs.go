package types

import "io/fs"

// FS is the filesystem abstraction used by stencil components.
// Implementations must be safe for sequential use; the OS-backed
// implementation lives in pkg/filesystem, the in-memory test double
// in pkg/testutil.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Chmod(name string, mode fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// ReadDir returns entries sorted by filename, matching os.ReadDir,
	// so directory walks are deterministic.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Removal
	Remove(name string) error
	RemoveAll(path string) error
}
