package sync

import (
	"fmt"
	"os"
	"path/filepath"
	stdsync "sync"

	"github.com/groweasy/backend/internal/models"
)

// DefaultAuditPath is the audit file used when none is configured.
const DefaultAuditPath = "sync_log.txt"

// FileAuditLog appends one line per sync pass to a text file.
type FileAuditLog struct {
	path string
	mu   stdsync.Mutex
}

// NewFileAuditLog creates an audit log writing to path.
func NewFileAuditLog(path string) *FileAuditLog {
	if path == "" {
		path = DefaultAuditPath
	}
	return &FileAuditLog{path: path}
}

// Path returns the file the log appends to.
func (a *FileAuditLog) Path() string {
	return a.path
}

// Append writes entry as a single line.
func (a *FileAuditLog) Append(entry models.SyncAuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := fmt.Fprintln(f, entry.Line()); err != nil {
		f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	return f.Close()
}
