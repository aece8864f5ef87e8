package fileops

import (
	"sync"
	"time"

	"github.com/arthur-debert/stencil/pkg/types"
)

// AuditEntry is one line of the in-memory operation log. The log is
// observability only and never drives control flow.
type AuditEntry struct {
	Time     time.Time    `json:"time"`
	Kind     types.OpKind `json:"kind"`
	Path     string       `json:"path"`
	Success  bool         `json:"success"`
	BackupID string       `json:"backupId,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type auditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// record appends an audit entry for a finished operation
func (m *Manager) record(res *OperationResult) {
	entry := AuditEntry{
		Time:     time.Now().UTC(),
		Kind:     res.Kind,
		Path:     res.Path,
		Success:  res.Success,
		BackupID: res.BackupID,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}

	m.audit.mu.Lock()
	m.audit.entries = append(m.audit.entries, entry)
	m.audit.mu.Unlock()

	evt := m.logger.Debug()
	if !res.Success {
		evt = m.logger.Warn().Err(res.Err)
	}
	evt.Str("op", string(res.Kind)).
		Str("path", res.Path).
		Bool("success", res.Success).
		Bool("rolledBack", res.RolledBack).
		Msg("file operation")
}

// AuditLog returns a copy of the audit log
func (m *Manager) AuditLog() []AuditEntry {
	m.audit.mu.Lock()
	defer m.audit.mu.Unlock()

	out := make([]AuditEntry, len(m.audit.entries))
	copy(out, m.audit.entries)
	return out
}

// ClearAuditLog truncates the audit log
func (m *Manager) ClearAuditLog() {
	m.audit.mu.Lock()
	defer m.audit.mu.Unlock()

	m.audit.entries = nil
}
