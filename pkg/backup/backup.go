// Package backup snapshots files before they are mutated and restores
// them afterwards. Each backup is a pair of artifacts in the backup
// directory: <id>.json holds the Record, <id>.data holds the original
// content when the path existed. Paths that did not exist still get a
// record for create-type operations, so a restore knows to remove
// whatever the operation left behind. Blobs are checksummed on creation
// and verified before restore.
package backup

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

const (
	recordExt = ".json"
	dataExt   = ".data"
)

// Record describes one backup: which path it protects, whether the
// path existed when the backup was taken, and the recorded mode. File
// backups also carry the sha256 of the snapshotted content.
type Record struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Operation types.OpKind `json:"operation"`
	Path      string       `json:"path"`
	Existed   bool         `json:"existed"`
	IsDir     bool         `json:"isDir,omitempty"`
	Mode      fs.FileMode  `json:"mode,omitempty"`
	Checksum  string       `json:"checksum,omitempty"`
}

// RestoreOptions controls restore behavior
type RestoreOptions struct {
	// DeleteAfter removes the backup artifacts after a successful restore
	DeleteAfter bool
}

// Manager creates, lists and restores backups. The in-memory index is
// rehydrated from the backup directory on construction, so records
// survive process restarts.
type Manager struct {
	fs     types.FS
	dir    string
	logger zerolog.Logger

	mu    sync.Mutex
	index map[string]*Record
}

// NewManager creates a backup manager rooted at dir, creating the
// directory if needed and loading any existing records.
func NewManager(fsys types.FS, dir string) (*Manager, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrInvalidInput, "backup directory cannot be empty")
	}

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to create backup directory %s", dir)
	}

	m := &Manager{
		fs:     fsys,
		dir:    dir,
		logger: logging.GetLogger("backup"),
		index:  make(map[string]*Record),
	}

	if err := m.rehydrate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Dir returns the backup directory
func (m *Manager) Dir() string {
	return m.dir
}

// rehydrate scans the backup directory and rebuilds the index
func (m *Manager) rehydrate() error {
	entries, err := m.fs.ReadDir(m.dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to scan backup directory %s", m.dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		data, err := m.fs.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable backup record")
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			m.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping malformed backup record")
			continue
		}

		m.index[rec.ID] = &rec
	}

	m.logger.Debug().Int("records", len(m.index)).Str("dir", m.dir).Msg("backup index loaded")
	return nil
}

// newID allocates a collision-resistant backup id
func newID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(buf))
}

// Create takes a backup of path before op runs against it. When the
// path does not exist and op cannot create it, no backup is needed and
// Create returns (nil, nil).
func (m *Manager) Create(path string, op types.OpKind) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, err := m.fs.Stat(path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot stat %s for backup", path)
	}

	if !exists && !op.CreatesTarget() {
		return nil, nil
	}

	rec := &Record{
		ID:        newID(),
		CreatedAt: time.Now().UTC(),
		Operation: op,
		Path:      path,
		Existed:   exists,
	}

	if exists {
		rec.Mode = info.Mode().Perm()
		rec.IsDir = info.IsDir()

		if !rec.IsDir {
			content, err := m.fs.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot snapshot %s", path)
			}
			rec.Checksum = checksum(content)
			if err := m.fs.WriteFile(m.dataPath(rec.ID), content, 0600); err != nil {
				return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot write backup blob for %s", path)
			}
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode backup record")
	}
	if err := m.fs.WriteFile(m.recordPath(rec.ID), data, 0600); err != nil {
		// Do not leave an orphaned blob behind
		_ = m.fs.Remove(m.dataPath(rec.ID))
		return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot write backup record for %s", path)
	}

	m.index[rec.ID] = rec
	m.logger.Debug().
		Str("id", rec.ID).
		Str("path", path).
		Str("op", string(op)).
		Bool("existed", exists).
		Msg("backup created")

	return rec, nil
}

// Restore puts the backed-up path back into its recorded state
func (m *Manager) Restore(id string, opts RestoreOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.restore(id, opts)
}

// restore is the internal implementation without locking
func (m *Manager) restore(id string, opts RestoreOptions) error {
	rec, ok := m.index[id]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "backup %s not found", id)
	}

	if !rec.Existed {
		// The path did not exist before the operation; undo means
		// removing whatever now occupies it.
		if err := m.fs.RemoveAll(rec.Path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot remove %s during restore", rec.Path)
		}
	} else if rec.IsDir {
		if err := m.fs.MkdirAll(rec.Path, rec.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot restore directory %s", rec.Path)
		}
		if err := m.fs.Chmod(rec.Path, rec.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot restore mode of %s", rec.Path)
		}
	} else {
		content, err := m.fs.ReadFile(m.dataPath(id))
		if err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot read backup blob %s", id)
		}
		if rec.Checksum != "" && checksum(content) != rec.Checksum {
			return errors.Newf(errors.ErrInternal, "backup blob %s is corrupted: checksum mismatch", id)
		}
		if err := m.fs.MkdirAll(filepath.Dir(rec.Path), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot recreate parent of %s", rec.Path)
		}
		if err := m.fs.WriteFile(rec.Path, content, rec.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot restore %s", rec.Path)
		}
		if err := m.fs.Chmod(rec.Path, rec.Mode); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure, "cannot restore mode of %s", rec.Path)
		}
	}

	m.logger.Info().Str("id", id).Str("path", rec.Path).Msg("backup restored")

	if opts.DeleteAfter {
		m.evict(rec)
	}

	return nil
}

// RestoreMany restores backups in reverse input order, matching the
// rollback order of a transaction. It stops at the first failure.
func (m *Manager) RestoreMany(ids []string, opts RestoreOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(ids) - 1; i >= 0; i-- {
		if err := m.restore(ids[i], opts); err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err), "restore of %s failed", ids[i])
		}
	}
	return nil
}

// Get returns the record for id, or nil when unknown
func (m *Manager) Get(id string) *Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.index[id]
}

// List returns all records, newest first
func (m *Manager) List() []*Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*Record, 0, len(m.index))
	for _, rec := range m.index {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records
}

// CleanupOlderThan evicts every backup older than age and returns the
// number of evicted records.
func (m *Manager) CleanupOlderThan(age time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-age)
	count := 0

	for _, rec := range m.index {
		if rec.CreatedAt.Before(cutoff) {
			m.evict(rec)
			count++
		}
	}

	if count > 0 {
		m.logger.Info().Int("evicted", count).Dur("maxAge", age).Msg("backup cleanup completed")
	}

	return count, nil
}

// evict removes a record's artifacts and index entry
func (m *Manager) evict(rec *Record) {
	_ = m.fs.Remove(m.recordPath(rec.ID))
	_ = m.fs.Remove(m.dataPath(rec.ID))
	delete(m.index, rec.ID)
}

func (m *Manager) recordPath(id string) string {
	return filepath.Join(m.dir, id+recordExt)
}

func (m *Manager) dataPath(id string) string {
	return filepath.Join(m.dir, id+dataExt)
}
