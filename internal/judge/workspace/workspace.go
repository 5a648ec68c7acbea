// Package workspace manages the disposable per-run directories that hold a
// submission's source file and compiled artifact.
package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"judgecore/internal/judge/language"
	appErr "judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

// Workspace is the filesystem scope owned by one judging call.
type Workspace struct {
	RootDir    string
	SourcePath string
	// ExecutablePath is empty for interpreted languages.
	ExecutablePath string
}

// Manager creates and releases workspaces under a fixed work root.
type Manager struct {
	root string
}

// NewManager creates the work root on demand and returns a manager.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		return nil, appErr.ValidationError("work_root", "required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.JudgeSystemError, "create work root failed")
	}
	return &Manager{root: root}, nil
}

// Create allocates a uniquely named directory and writes the source file
// with the language-appropriate name. The directory is usable immediately.
func (m *Manager) Create(spec language.Spec, code string) (Workspace, error) {
	dir := filepath.Join(m.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Workspace{}, appErr.Wrapf(err, appErr.JudgeSystemError, "create workspace failed")
	}

	sourcePath := filepath.Join(dir, spec.SourceFile)
	if err := os.WriteFile(sourcePath, []byte(code), 0644); err != nil {
		_ = os.RemoveAll(dir)
		return Workspace{}, appErr.Wrapf(err, appErr.JudgeSystemError, "write source failed")
	}

	ws := Workspace{RootDir: dir, SourcePath: sourcePath}
	if spec.ArtifactFile != "" {
		ws.ExecutablePath = filepath.Join(dir, spec.ArtifactFile)
	}
	return ws, nil
}

// Release deletes the workspace recursively. Best-effort: a failure is
// logged and never surfaced to the caller. The compile cache directory is
// outside the work root and is never touched here.
func (m *Manager) Release(ctx context.Context, ws Workspace) {
	if ws.RootDir == "" || ws.RootDir == m.root {
		return
	}
	if err := os.RemoveAll(ws.RootDir); err != nil {
		logger.Warn(ctx, "release workspace failed", zap.String("dir", ws.RootDir), zap.Error(err))
	}
}
