package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"esdemedia/internal/fileutil"
	"esdemedia/internal/logging"
)

// WorkspacePrefix starts the name of every per-job temporary directory.
const WorkspacePrefix = ".esdemedia-"

// Workspace is a uniquely named scratch directory beside a job's destination.
// Keeping it on the destination filesystem lets the winning artifact be
// renamed into place.
type Workspace struct {
	dir    string
	logger *slog.Logger
}

// NewWorkspace creates <parent>/.esdemedia-<label>-<uuid>.
func NewWorkspace(parent, label string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := filepath.Join(parent, WorkspacePrefix+label+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns a file path inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the workspace. Failures are logged and never escalated.
func (w *Workspace) Close() {
	if w == nil {
		return
	}
	if err := fileutil.RemoveAllForce(w.dir); err != nil {
		logging.WarnWithContext(w.logger, "workspace cleanup failed; directory remains", "workspace_cleanup_failed",
			logging.String("workspace", w.dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "temporary files left beside the output"),
		)
	}
}
