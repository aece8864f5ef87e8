package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTemplate represents a template directory built inside a MemoryFS
type TestTemplate struct {
	FS   *MemoryFS
	Root string // Templates root directory
	Name string // Template name
	Dir  string // Full path to the template directory
}

// SetupTestTemplate creates a template directory skeleton in a fresh MemoryFS
func SetupTestTemplate(t *testing.T, name string) *TestTemplate {
	t.Helper()

	fsys := NewMemoryFS()
	root := "/templates"
	dir := filepath.Join(root, name)

	require.NoError(t, fsys.MkdirAll(dir, 0755))

	return &TestTemplate{
		FS:   fsys,
		Root: root,
		Name: name,
		Dir:  dir,
	}
}

// SetupTestTemplateIn creates a template directory inside an existing MemoryFS
func SetupTestTemplateIn(t *testing.T, fsys *MemoryFS, root, name string) *TestTemplate {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, fsys.MkdirAll(dir, 0755))

	return &TestTemplate{
		FS:   fsys,
		Root: root,
		Name: name,
		Dir:  dir,
	}
}

// AddFile adds a file to the template directory
func (tt *TestTemplate) AddFile(t *testing.T, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(tt.Dir, filename)
	require.NoError(t, tt.FS.MkdirAll(filepath.Dir(filePath), 0755))
	require.NoError(t, tt.FS.WriteFile(filePath, []byte(content), 0644))
	return filePath
}

// AddManifest adds a stencil.json manifest to the template directory
func (tt *TestTemplate) AddManifest(t *testing.T, manifest string) string {
	t.Helper()
	return tt.AddFile(t, "stencil.json", manifest)
}

// MinimalManifest is a valid manifest with only the required fields
const MinimalManifest = `{
  "name": "minimal",
  "version": "1.0.0",
  "files": [
    {"source": "main.txt", "target": "main.txt"}
  ]
}`

// AddMinimalTemplate populates the template with a minimal valid
// manifest (named after the template) and its single source file
func (tt *TestTemplate) AddMinimalTemplate(t *testing.T) {
	t.Helper()

	tt.AddManifest(t, `{
  "name": "`+tt.Name+`",
  "version": "1.0.0",
  "files": [
    {"source": "main.txt", "target": "main.txt"}
  ]
}`)
	tt.AddFile(t, "main.txt", "hello {{name}}\n")
}
