package fileops

import (
	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Operation is one step of a transaction
type Operation struct {
	Kind   types.OpKind `json:"kind"`
	Path   string       `json:"path"`
	Source string       `json:"source,omitempty"` // copy and move only
	Data   []byte       `json:"-"`                // write and append only
	Opts   OpOptions    `json:"-"`
}

// TransactionResult reports a whole transaction. FailedIndex is -1 on
// success.
type TransactionResult struct {
	Success     bool               `json:"success"`
	Results     []*OperationResult `json:"results"`
	FailedIndex int                `json:"failedIndex"`
	RolledBack  bool               `json:"rolledBack,omitempty"`
	Err         error              `json:"-"`
}

// ExecuteTransaction applies an ordered list of operations. On the
// first failure it stops, restores every backup gathered by the prior
// operations in reverse creation order, and marks the result rolled
// back. The failing operation restores its own backup in its own flow.
func (m *Manager) ExecuteTransaction(ops []Operation) *TransactionResult {
	tr := &TransactionResult{FailedIndex: -1}

	var priorBackups []string

	for i, op := range ops {
		res := m.apply(op)
		tr.Results = append(tr.Results, res)

		if !res.Success {
			tr.FailedIndex = i
			tr.Err = res.Err

			if len(priorBackups) == 0 {
				tr.RolledBack = true
				return tr
			}

			if err := m.backups.RestoreMany(priorBackups, backup.RestoreOptions{}); err != nil {
				m.logger.Error().Err(err).Int("failedIndex", i).Msg("transaction rollback failed")
				tr.Err = errors.Wrapf(err, errors.ErrInternal, "transaction failed at step %d and rollback did not complete", i)
				return tr
			}

			tr.RolledBack = true
			m.logger.Warn().
				Int("failedIndex", i).
				Int("restored", len(priorBackups)).
				Msg("transaction rolled back")
			return tr
		}

		if res.BackupID != "" {
			priorBackups = append(priorBackups, res.BackupID)
		}
	}

	tr.Success = true
	return tr
}

// apply dispatches one transaction step to the matching operation
func (m *Manager) apply(op Operation) *OperationResult {
	switch op.Kind {
	case types.OpWrite:
		return m.Write(op.Path, op.Data, op.Opts)
	case types.OpAppend:
		return m.Append(op.Path, op.Data, op.Opts)
	case types.OpDelete:
		return m.Delete(op.Path, op.Opts)
	case types.OpMkdir:
		return m.Mkdir(op.Path, op.Opts)
	case types.OpCopy:
		return m.Copy(op.Source, op.Path, op.Opts)
	case types.OpMove:
		return m.Move(op.Source, op.Path, op.Opts)
	default:
		res := &OperationResult{Kind: op.Kind, Path: op.Path}
		res.Err = errors.Newf(errors.ErrInvalidInput, "unsupported operation kind %q", op.Kind)
		m.record(res)
		return res
	}
}
