package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"judgecore/internal/judge/language"
)

func mustSpec(t *testing.T, id string) language.Spec {
	t.Helper()
	spec, err := language.Lookup(id)
	if err != nil {
		t.Fatalf("lookup %s failed: %v", id, err)
	}
	return spec
}

func TestNewManagerCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "work")
	if _, err := NewManager(root); err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("work root not created: %v", err)
	}
}

func TestNewManagerRejectsEmptyRoot(t *testing.T) {
	if _, err := NewManager(""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestCreateWritesSource(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ws, err := m.Create(mustSpec(t, "cpp"), "int main() {}")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(ws.SourcePath) != "main.cpp" {
		t.Fatalf("expected main.cpp, got %s", ws.SourcePath)
	}
	if filepath.Base(ws.ExecutablePath) != "main" {
		t.Fatalf("expected main artifact path, got %s", ws.ExecutablePath)
	}
	data, err := os.ReadFile(ws.SourcePath)
	if err != nil {
		t.Fatalf("read source failed: %v", err)
	}
	if string(data) != "int main() {}" {
		t.Fatalf("source content mismatch: %q", data)
	}
}

func TestCreateJavaNaming(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ws, err := m.Create(mustSpec(t, "java"), "public class Main {}")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Base(ws.SourcePath) != "Main.java" {
		t.Fatalf("expected Main.java, got %s", ws.SourcePath)
	}
	if filepath.Base(ws.ExecutablePath) != "Main.class" {
		t.Fatalf("expected Main.class, got %s", ws.ExecutablePath)
	}
}

func TestCreateInterpretedHasNoArtifact(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ws, err := m.Create(mustSpec(t, "python"), "print(1)")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ws.ExecutablePath != "" {
		t.Fatalf("python workspace must not carry an artifact path, got %s", ws.ExecutablePath)
	}
}

func TestCreateUniqueDirectories(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	spec := mustSpec(t, "python")
	a, err := m.Create(spec, "print(1)")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := m.Create(spec, "print(1)")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.RootDir == b.RootDir {
		t.Fatalf("concurrent workspaces must not share a directory")
	}
}

func TestReleaseRemovesDirectory(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ws, err := m.Create(mustSpec(t, "python"), "print(1)")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	m.Release(context.Background(), ws)
	if _, err := os.Stat(ws.RootDir); !os.IsNotExist(err) {
		t.Fatalf("workspace dir still present after release")
	}
}

func TestReleaseIgnoresEmptyWorkspace(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.Release(context.Background(), Workspace{})
	m.Release(context.Background(), Workspace{RootDir: root})
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("work root must survive a release guard: %v", err)
	}
}
