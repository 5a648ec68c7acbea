// Package language defines the supported languages and how to compile and
// run each of them.
package language

import (
	"strings"

	"github.com/google/shlex"

	appErr "judgecore/pkg/errors"
)

// ID identifies a supported language.
type ID string

const (
	Cpp    ID = "cpp"
	Python ID = "python"
	Java   ID = "java"
)

// Spec defines how to compile and run a language.
//
// Command templates use {compiler}, {runtime}, {src}, {bin} and {dir}
// placeholders; they are expanded and then split with shlex, so paths with
// spaces survive as single arguments when quoted in the template.
type Spec struct {
	ID             ID
	Name           string
	SourceFile     string
	ArtifactFile   string
	// ArtifactGlob matches every file the compiler leaves behind. The JVM
	// emits one class file per inner or secondary class, so the full set
	// must travel together through the cache.
	ArtifactGlob   string
	CompileEnabled bool
	CompileCmdTpl  string
	RunCmdTpl      string
	Env            []string
}

// The JVM entry class must be the fixed identifier Main: the source file is
// always written as Main.java and compiled in place.
var registry = map[ID]Spec{
	Cpp: {
		ID:             Cpp,
		Name:           "C++",
		SourceFile:     "main.cpp",
		ArtifactFile:   "main",
		ArtifactGlob:   "main",
		CompileEnabled: true,
		CompileCmdTpl:  "{compiler} -O2 -std=gnu++17 -pipe -o {bin} {src}",
		RunCmdTpl:      "{bin}",
	},
	Python: {
		ID:             Python,
		Name:           "Python",
		SourceFile:     "main.py",
		CompileEnabled: false,
		RunCmdTpl:      "{runtime} {src}",
	},
	Java: {
		ID:             Java,
		Name:           "Java",
		SourceFile:     "Main.java",
		ArtifactFile:   "Main.class",
		ArtifactGlob:   "*.class",
		CompileEnabled: true,
		CompileCmdTpl:  "{compiler} -encoding UTF-8 {src}",
		RunCmdTpl:      "{runtime} -Xss64m -cp {dir} Main",
	},
}

// Lookup returns the spec for a language id.
func Lookup(id string) (Spec, error) {
	spec, ok := registry[ID(id)]
	if !ok {
		return Spec{}, appErr.Newf(appErr.LanguageNotSupported, "unsupported language: %s", id)
	}
	return spec, nil
}

// Supported reports whether the language id is in the registry.
func Supported(id string) bool {
	_, ok := registry[ID(id)]
	return ok
}

// BuildCommand splits a command template into argv and expands placeholders
// per token, so a resolved path containing spaces stays a single argument.
func BuildCommand(tpl string, vars map[string]string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	fields, err := shlex.Split(tpl)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is empty")
	}
	for i, field := range fields {
		for key, value := range vars {
			field = strings.ReplaceAll(field, "{"+key+"}", value)
		}
		fields[i] = field
	}
	return fields, nil
}
