package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Injectable operation names for WithOpError.
const (
	OpRead    = "read"
	OpWrite   = "write"
	OpStat    = "stat"
	OpChmod   = "chmod"
	OpMkdir   = "mkdir"
	OpRemove  = "remove"
	OpReadDir = "readdir"
)

// MemoryFS implements types.FS with in-memory storage. It supports
// per-path error injection and counts mutations, which lets tests prove
// that dry runs touch nothing and that failed operations roll back.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode

	// Error injection, keyed "op:path" with "*" matching every op.
	// Guarded separately so one-shot errors can be consumed while the
	// tree is held under a read lock.
	errMu      sync.Mutex
	errorPaths map[string]error
	onceErrors map[string]error

	// Statistics
	readCount  int
	writeCount int
}

// fileNode represents a file or directory in memory
type fileNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	children map[string]*fileNode
}

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	root := &fileNode{
		name:     "/",
		mode:     0755 | os.ModeDir,
		modTime:  time.Now(),
		isDir:    true,
		children: make(map[string]*fileNode),
	}

	return &MemoryFS{
		files:      map[string]*fileNode{"/": root},
		errorPaths: make(map[string]error),
		onceErrors: make(map[string]error),
	}
}

// WithError configures the filesystem to fail every operation on path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.errMu.Lock()
	defer m.errMu.Unlock()

	m.errorPaths["*:"+normalizePath(path)] = err
	return m
}

// WithOpError configures the filesystem to fail one operation kind on path
func (m *MemoryFS) WithOpError(op, path string, err error) *MemoryFS {
	m.errMu.Lock()
	defer m.errMu.Unlock()

	m.errorPaths[op+":"+normalizePath(path)] = err
	return m
}

// WithOpErrorOnce configures a single failure of one operation kind on
// path; subsequent calls succeed. Useful for proving rollback, where
// the restore revisits the very path whose mutation just failed.
func (m *MemoryFS) WithOpErrorOnce(op, path string, err error) *MemoryFS {
	m.errMu.Lock()
	defer m.errMu.Unlock()

	m.onceErrors[op+":"+normalizePath(path)] = err
	return m
}

// ClearErrors removes all injected errors
func (m *MemoryFS) ClearErrors() {
	m.errMu.Lock()
	defer m.errMu.Unlock()

	m.errorPaths = make(map[string]error)
	m.onceErrors = make(map[string]error)
}

// Stats returns read and mutation counts
func (m *MemoryFS) Stats() (reads, writes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCount, m.writeCount
}

// Exists reports whether a path is present
func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.files[normalizePath(path)]
	return ok
}

// Paths returns every stored path, sorted, excluding the root
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for p := range m.files {
		if p != "/" {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) injected(op, path string) error {
	m.errMu.Lock()
	defer m.errMu.Unlock()

	if err, ok := m.onceErrors[op+":"+path]; ok {
		delete(m.onceErrors, op+":"+path)
		return err
	}
	if err, ok := m.errorPaths[op+":"+path]; ok {
		return err
	}
	if err, ok := m.errorPaths["*:"+path]; ok {
		return err
	}
	return nil
}

// getNode retrieves a node at the given path
func (m *MemoryFS) getNode(op, path string) (*fileNode, error) {
	path = normalizePath(path)

	if err := m.injected(op, path); err != nil {
		return nil, err
	}

	node, exists := m.files[path]
	if !exists {
		return nil, &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}

	return node, nil
}

// getParentAndName splits a path into parent directory node and filename
func (m *MemoryFS) getParentAndName(op, path string) (parent *fileNode, name string, err error) {
	path = normalizePath(path)
	dir := filepath.Dir(path)
	name = filepath.Base(path)

	parent, err = m.getNode(op, dir)
	if err != nil {
		return nil, "", err
	}

	if !parent.isDir {
		return nil, "", &fs.PathError{Op: op, Path: dir, Err: errors.New("not a directory")}
	}

	return parent, name, nil
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++

	node, err := m.getNode(OpRead, name)
	if err != nil {
		return nil, err
	}

	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	// Return a copy to prevent mutation
	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating it and its parents if necessary
func (m *MemoryFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path := normalizePath(name)

	if err := m.injected(OpWrite, path); err != nil {
		return err
	}

	if node, ok := m.files[path]; ok && node.isDir {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("is a directory")}
	}

	parent, filename, err := m.getParentAndName(OpWrite, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := m.mkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			parent, filename, err = m.getParentAndName(OpWrite, path)
			if err != nil {
				return err
			}
		} else {
			return err
		}
	}

	node := &fileNode{
		name:    filename,
		mode:    perm,
		modTime: time.Now(),
		content: make([]byte, len(data)),
		isDir:   false,
	}
	copy(node.content, data)

	parent.children[filename] = node
	m.files[path] = node

	return nil
}

// Stat returns file info
func (m *MemoryFS) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(OpStat, name)
	if err != nil {
		return nil, err
	}

	return &fileInfo{node: node, name: filepath.Base(normalizePath(name))}, nil
}

// Chmod updates the permission bits of a path
func (m *MemoryFS) Chmod(name string, mode os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	node, err := m.getNode(OpChmod, name)
	if err != nil {
		return err
	}

	if node.isDir {
		node.mode = mode.Perm() | os.ModeDir
	} else {
		node.mode = mode.Perm()
	}
	return nil
}

// Remove removes a file or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path := normalizePath(name)

	node, err := m.getNode(OpRemove, path)
	if err != nil {
		return err
	}

	if node.isDir && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
	}

	parent, filename, err := m.getParentAndName(OpRemove, path)
	if err != nil {
		return err
	}

	delete(parent.children, filename)
	delete(m.files, path)

	return nil
}

// RemoveAll removes a file or directory recursively
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path = normalizePath(path)

	if err := m.injected(OpRemove, path); err != nil {
		return err
	}

	toRemove := []string{}
	for p := range m.files {
		if strings.HasPrefix(p, path+"/") || p == path {
			toRemove = append(toRemove, p)
		}
	}

	for _, p := range toRemove {
		delete(m.files, p)

		if dir := filepath.Dir(p); dir != p {
			if parent, ok := m.files[dir]; ok && parent.isDir {
				delete(parent.children, filepath.Base(p))
			}
		}
	}

	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	if err := m.injected(OpMkdir, normalizePath(path)); err != nil {
		return err
	}

	return m.mkdirAll(path, perm)
}

// mkdirAll is the internal implementation without locking
func (m *MemoryFS) mkdirAll(path string, perm os.FileMode) error {
	path = normalizePath(path)

	if node, ok := m.files[path]; ok {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("file exists")}
		}
		return nil
	}

	parts := strings.Split(path, "/")
	current := "/"
	currentNode := m.files["/"]

	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}

		next := filepath.Join(current, parts[i])

		if child, exists := currentNode.children[parts[i]]; exists {
			if !child.isDir {
				return &fs.PathError{Op: "mkdir", Path: next, Err: errors.New("not a directory")}
			}
			currentNode = child
			current = next
			continue
		}

		newDir := &fileNode{
			name:     parts[i],
			mode:     perm | os.ModeDir,
			modTime:  time.Now(),
			isDir:    true,
			children: make(map[string]*fileNode),
		}

		currentNode.children[parts[i]] = newDir
		m.files[next] = newDir

		currentNode = newDir
		current = next
	}

	return nil
}

// ReadDir reads a directory and returns its entries sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(OpReadDir, name)
	if err != nil {
		return nil, err
	}

	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}

	names := make([]string, 0, len(node.children))
	for childName := range node.children {
		names = append(names, childName)
	}
	sort.Strings(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, childName := range names {
		entries = append(entries, &dirEntry{
			name: childName,
			info: &fileInfo{node: node.children[childName], name: childName},
		})
	}

	return entries, nil
}

// fileInfo implements os.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return fi.node }

// dirEntry implements fs.DirEntry
type dirEntry struct {
	name string
	info os.FileInfo
}

func (de *dirEntry) Name() string               { return de.name }
func (de *dirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *dirEntry) Type() os.FileMode          { return de.info.Mode().Type() }
func (de *dirEntry) Info() (os.FileInfo, error) { return de.info, nil }
