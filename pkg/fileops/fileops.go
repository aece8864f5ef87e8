// Package fileops wraps primitive filesystem operations with path
// validation, backup-before-mutate, and rollback-on-failure. Mutating
// calls never return a Go error; they return an OperationResult whose
// Err field carries the failure. Reads propagate errors directly.
package fileops

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

const (
	defaultFileMode = fs.FileMode(0644)
	defaultDirMode  = fs.FileMode(0755)
)

// OpOptions tunes a single mutating operation
type OpOptions struct {
	// WithoutBackup skips the pre-mutation backup. The operation then
	// cannot be rolled back.
	WithoutBackup bool

	// PreservePermissions copies the source file's permission bits on
	// copy and move. Without it targets get the default mode.
	PreservePermissions bool

	// Mode sets explicit permission bits for the written target.
	// Zero means the default (0644 files, 0755 directories).
	Mode fs.FileMode
}

// OperationResult reports the outcome of one mutating operation
type OperationResult struct {
	Kind       types.OpKind `json:"kind"`
	Path       string       `json:"path"`
	Success    bool         `json:"success"`
	BackupID   string       `json:"backupId,omitempty"`
	RolledBack bool         `json:"rolledBack,omitempty"`
	Err        error        `json:"-"`
}

// Manager performs validated, backed-up, rollback-capable file
// mutations inside a sandbox root.
type Manager struct {
	fs        types.FS
	validator *paths.Validator
	backups   *backup.Manager
	logger    zerolog.Logger

	audit auditLog
}

// NewManager creates a file operations manager. The validator defines
// the sandbox every path is resolved against; the backup manager
// stores pre-mutation snapshots.
func NewManager(fsys types.FS, validator *paths.Validator, backups *backup.Manager) *Manager {
	return &Manager{
		fs:        fsys,
		validator: validator,
		backups:   backups,
		logger:    logging.GetLogger("fileops"),
	}
}

// Root returns the sandbox root paths are validated against
func (m *Manager) Root() string {
	return m.validator.Root()
}

// Read returns the contents of a file inside the sandbox
func (m *Manager) Read(path string) ([]byte, error) {
	outcome := m.validator.Validate(path)
	if !outcome.Valid {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid path %q: %s", path, outcome.Reason)
	}

	data, err := m.fs.ReadFile(outcome.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "file %s does not exist", outcome.Path)
		}
		return nil, errors.Wrapf(err, errors.ErrExecutionFailure, "cannot read %s", outcome.Path)
	}
	return data, nil
}

// Write writes data to a file, creating parent directories as needed
func (m *Manager) Write(path string, data []byte, opts OpOptions) *OperationResult {
	return m.mutate(types.OpWrite, path, opts, func(abs string) error {
		if err := m.fs.MkdirAll(filepath.Dir(abs), defaultDirMode); err != nil {
			return err
		}
		return m.fs.WriteFile(abs, data, fileMode(opts))
	})
}

// Append appends data to a file, creating it when absent. An existing
// file keeps its permission bits.
func (m *Manager) Append(path string, data []byte, opts OpOptions) *OperationResult {
	return m.mutate(types.OpAppend, path, opts, func(abs string) error {
		mode := fileMode(opts)
		var existing []byte

		if info, err := m.fs.Stat(abs); err == nil {
			content, err := m.fs.ReadFile(abs)
			if err != nil {
				return err
			}
			existing = content
			mode = info.Mode().Perm()
		} else if !os.IsNotExist(err) {
			return err
		}

		if err := m.fs.MkdirAll(filepath.Dir(abs), defaultDirMode); err != nil {
			return err
		}
		return m.fs.WriteFile(abs, append(existing, data...), mode)
	})
}

// Delete removes a file or an empty directory. Non-empty directories
// are refused: a single backup record cannot restore a whole tree, and
// the rollback guarantee wins over convenience.
func (m *Manager) Delete(path string, opts OpOptions) *OperationResult {
	res := m.deleteRaw(path, opts)
	m.record(res)
	return res
}

// Mkdir creates a directory and any missing parents
func (m *Manager) Mkdir(path string, opts OpOptions) *OperationResult {
	return m.mutate(types.OpMkdir, path, opts, func(abs string) error {
		mode := opts.Mode
		if mode == 0 {
			mode = defaultDirMode
		}
		return m.fs.MkdirAll(abs, mode)
	})
}

// Copy copies a single file inside the sandbox. Directory trees are
// handled a level up by walking and copying per file.
func (m *Manager) Copy(src, dst string, opts OpOptions) *OperationResult {
	res := m.copyRaw(types.OpCopy, src, dst, opts)
	m.record(res)
	return res
}

// Move copies the source to the destination and then deletes the
// source. Never a native rename, so it stays correct across volumes.
// The whole move is all-or-nothing: a failed source delete undoes the
// copy half.
func (m *Manager) Move(src, dst string, opts OpOptions) *OperationResult {
	res := m.copyRaw(types.OpMove, src, dst, opts)
	if !res.Success {
		m.record(res)
		return res
	}

	delRes := m.deleteRaw(src, OpOptions{WithoutBackup: opts.WithoutBackup})
	if !delRes.Success {
		if res.BackupID != "" {
			if err := m.backups.Restore(res.BackupID, backup.RestoreOptions{}); err != nil {
				m.logger.Error().Err(err).Str("backup", res.BackupID).Msg("rollback of move copy failed")
			} else {
				res.RolledBack = true
			}
		}
		res.Success = false
		res.Err = errors.Wrapf(delRes.Err, errors.ErrExecutionFailure, "move failed deleting source %s", src)
	}

	m.record(res)
	return res
}

// deleteRaw runs the delete flow without recording an audit entry
func (m *Manager) deleteRaw(path string, opts OpOptions) *OperationResult {
	return m.mutateRaw(types.OpDelete, path, opts, func(abs string) error {
		return m.fs.Remove(abs)
	})
}

// copyRaw runs the copy flow without recording, labeling the result
// with kind so it serves both Copy and the copy half of Move.
func (m *Manager) copyRaw(kind types.OpKind, src, dst string, opts OpOptions) *OperationResult {
	res := &OperationResult{Kind: kind, Path: dst}

	srcOutcome := m.validator.Validate(src)
	if !srcOutcome.Valid {
		res.Err = errors.Newf(errors.ErrInvalidInput, "invalid source path %q: %s", src, srcOutcome.Reason)
		return res
	}

	dstOutcome := m.validator.Validate(dst)
	if dstOutcome.Valid && srcOutcome.Path == dstOutcome.Path {
		res.Err = errors.Newf(errors.ErrInvalidInput, "source and destination are the same: %s", srcOutcome.Path)
		return res
	}

	info, err := m.fs.Stat(srcOutcome.Path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Err = errors.Wrapf(err, errors.ErrNotFound, "source %s does not exist", srcOutcome.Path)
		} else {
			res.Err = errors.Wrapf(err, errors.ErrExecutionFailure, "cannot stat source %s", srcOutcome.Path)
		}
		return res
	}
	if info.IsDir() {
		res.Err = errors.Newf(errors.ErrInvalidInput, "source %s is a directory", srcOutcome.Path)
		return res
	}

	data, err := m.fs.ReadFile(srcOutcome.Path)
	if err != nil {
		res.Err = errors.Wrapf(err, errors.ErrExecutionFailure, "cannot read source %s", srcOutcome.Path)
		return res
	}

	mode := fileMode(opts)
	if opts.PreservePermissions {
		mode = info.Mode().Perm()
	}

	return m.mutateRaw(kind, dst, opts, func(abs string) error {
		if err := m.fs.MkdirAll(filepath.Dir(abs), defaultDirMode); err != nil {
			return err
		}
		if err := m.fs.WriteFile(abs, data, mode); err != nil {
			return err
		}
		if opts.PreservePermissions {
			return m.fs.Chmod(abs, mode)
		}
		return nil
	})
}

// mutate runs the shared mutation flow and records an audit entry
func (m *Manager) mutate(kind types.OpKind, path string, opts OpOptions, op func(abs string) error) *OperationResult {
	res := m.mutateRaw(kind, path, opts, op)
	m.record(res)
	return res
}

// mutateRaw is the shared mutation flow: validate, back up, perform,
// and on failure restore the just-taken backup.
func (m *Manager) mutateRaw(kind types.OpKind, path string, opts OpOptions, op func(abs string) error) *OperationResult {
	res := &OperationResult{Kind: kind, Path: path}

	outcome := m.validator.Validate(path)
	if !outcome.Valid {
		res.Err = errors.Newf(errors.ErrInvalidInput, "invalid path %q: %s", path, outcome.Reason)
		return res
	}
	res.Path = outcome.Path

	if !opts.WithoutBackup {
		rec, err := m.backups.Create(outcome.Path, kind)
		if err != nil {
			// Backup failure blocks the mutation
			res.Err = errors.Wrapf(err, errors.GetErrorCode(err), "backup of %s failed, mutation blocked", outcome.Path)
			return res
		}
		if rec != nil {
			res.BackupID = rec.ID
		}
	}

	if err := op(outcome.Path); err != nil {
		res.Err = errors.Wrapf(err, errors.ErrExecutionFailure, "%s failed for %s", kind, outcome.Path)

		if res.BackupID != "" {
			if rerr := m.backups.Restore(res.BackupID, backup.RestoreOptions{}); rerr != nil {
				m.logger.Error().Err(rerr).Str("backup", res.BackupID).Str("path", outcome.Path).Msg("rollback failed")
			} else {
				res.RolledBack = true
			}
		}

		return res
	}

	res.Success = true
	return res
}

// fileMode resolves the target mode for file writes
func fileMode(opts OpOptions) fs.FileMode {
	if opts.Mode != 0 {
		return opts.Mode
	}
	return defaultFileMode
}
