// Package toolchain resolves compiler and runtime executable paths per
// language. Resolution is deterministic and read-only: an environment
// override wins, then well-known install roots, then the bare command name
// on PATH. The bare name is always returned as a last resort so a missing
// toolchain surfaces as a clear spawn failure instead of a silent
// misconfiguration.
package toolchain

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"judgecore/internal/judge/language"
)

// Toolchain holds the resolved executables for one language.
type Toolchain struct {
	// Compiler is empty for interpreted languages.
	Compiler string
	// Runtime is empty for languages that run the compiled binary directly.
	Runtime string
}

// Probes are the filesystem/environment lookups used during resolution.
// They are injectable so unit tests never touch the real host.
type Probes struct {
	Getenv     func(string) string
	FileExists func(string) bool
	LookPath   func(string) (string, error)
}

// Locator resolves toolchain paths for supported languages.
type Locator struct {
	probes Probes
}

// NewLocator creates a locator backed by the real environment.
func NewLocator() *Locator {
	return NewLocatorWithProbes(Probes{})
}

// NewLocatorWithProbes creates a locator with custom lookups. Missing probes
// fall back to the real environment.
func NewLocatorWithProbes(p Probes) *Locator {
	if p.Getenv == nil {
		p.Getenv = os.Getenv
	}
	if p.FileExists == nil {
		p.FileExists = func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		}
	}
	if p.LookPath == nil {
		p.LookPath = exec.LookPath
	}
	return &Locator{probes: p}
}

// Resolve returns the toolchain for a language. It never fails: when nothing
// is found the bare command names are returned.
func (l *Locator) Resolve(id language.ID) Toolchain {
	switch id {
	case language.Cpp:
		return Toolchain{
			Compiler: l.resolve("JUDGE_CPP_COMPILER", cppInstallCandidates(), "g++"),
		}
	case language.Python:
		return Toolchain{
			Runtime: l.resolve("JUDGE_PYTHON_BIN", pythonInstallCandidates(), pythonBareName()),
		}
	case language.Java:
		return Toolchain{
			Compiler: l.resolveJavaTool("javac"),
			Runtime:  l.resolveJavaTool("java"),
		}
	default:
		return Toolchain{}
	}
}

// resolve walks the strategy chain: env override, known install locations,
// PATH, bare name.
func (l *Locator) resolve(envVar string, candidates []string, bare string) string {
	if override := l.probes.Getenv(envVar); override != "" {
		return override
	}
	for _, candidate := range candidates {
		if l.probes.FileExists(candidate) {
			return candidate
		}
	}
	if found, err := l.probes.LookPath(bare); err == nil {
		return found
	}
	return bare
}

// resolveJavaTool resolves javac/java under JUDGE_JAVA_HOME or JAVA_HOME
// before probing install roots and PATH.
func (l *Locator) resolveJavaTool(tool string) string {
	for _, homeVar := range []string{"JUDGE_JAVA_HOME", "JAVA_HOME"} {
		home := l.probes.Getenv(homeVar)
		if home == "" {
			continue
		}
		candidate := filepath.Join(home, "bin", exeName(tool))
		if l.probes.FileExists(candidate) {
			return candidate
		}
	}
	return l.resolve("", javaInstallCandidates(tool), tool)
}

func cppInstallCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\MinGW\bin\g++.exe`,
			`C:\msys64\ucrt64\bin\g++.exe`,
			`C:\msys64\mingw64\bin\g++.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/g++", "/usr/local/bin/g++", "/usr/bin/g++"}
	default:
		return []string{"/usr/bin/g++", "/usr/local/bin/g++"}
	}
}

func pythonInstallCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Python312\python.exe`,
			`C:\Python311\python.exe`,
			`C:\Python310\python.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/python3", "/usr/local/bin/python3", "/usr/bin/python3"}
	default:
		return []string{"/usr/bin/python3", "/usr/local/bin/python3"}
	}
}

func javaInstallCandidates(tool string) []string {
	switch runtime.GOOS {
	case "windows":
		return nil
	case "darwin":
		return []string{
			filepath.Join("/opt/homebrew/opt/openjdk/bin", tool),
			filepath.Join("/usr/local/opt/openjdk/bin", tool),
		}
	default:
		return []string{
			filepath.Join("/usr/bin", tool),
			filepath.Join("/usr/lib/jvm/default-java/bin", tool),
		}
	}
}

func pythonBareName() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
