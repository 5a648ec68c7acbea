// Package service orchestrates judging: toolchain resolution, workspace
// setup, cached compilation, warm-up and per-case execution.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"judgecore/internal/judge/cache"
	"judgecore/internal/judge/language"
	"judgecore/internal/judge/observer"
	"judgecore/internal/judge/runner"
	"judgecore/internal/judge/toolchain"
	"judgecore/internal/judge/verdict"
	"judgecore/internal/judge/workspace"
	appErr "judgecore/pkg/errors"
	"judgecore/pkg/utils/logger"
)

const (
	defaultCompileTimeout = 30 * time.Second
	defaultRunTimeout     = 3 * time.Second
	slotAcquireWait       = 2 * time.Second
)

// TestCase pairs an input with its expected output.
type TestCase struct {
	Input    string
	Expected string
}

// Service judges submissions. Errors never cross the boundary as Go errors:
// every outcome is a status plus a bounded human-readable message.
type Service struct {
	locator        *toolchain.Locator
	workspaces     *workspace.Manager
	runner         runner.Runner
	cache          *cache.ArtifactCache
	metrics        observer.MetricsRecorder
	compileTimeout time.Duration
	runTimeout     time.Duration
	skipWarmUp     bool
	sem            chan struct{}
}

// Config holds service dependencies and settings.
type Config struct {
	Locator        *toolchain.Locator
	Workspaces     *workspace.Manager
	Runner         runner.Runner
	Cache          *cache.ArtifactCache
	Metrics        observer.MetricsRecorder
	CompileTimeout time.Duration
	RunTimeout     time.Duration
	PoolSize       int
	// SkipWarmUp disables the throwaway warm-up invocation. Meant for tests
	// that need deterministic single-run timing.
	SkipWarmUp bool
}

// NewService creates a new judge service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Locator == nil {
		return nil, appErr.ValidationError("locator", "required")
	}
	if cfg.Workspaces == nil {
		return nil, appErr.ValidationError("workspaces", "required")
	}
	if cfg.Runner == nil {
		return nil, appErr.ValidationError("runner", "required")
	}
	if cfg.Cache == nil {
		return nil, appErr.ValidationError("cache", "required")
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observer.NoopMetricsRecorder{}
	}
	compileTimeout := cfg.CompileTimeout
	if compileTimeout <= 0 {
		compileTimeout = defaultCompileTimeout
	}
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Service{
		locator:        cfg.Locator,
		workspaces:     cfg.Workspaces,
		runner:         cfg.Runner,
		cache:          cfg.Cache,
		metrics:        metrics,
		compileTimeout: compileTimeout,
		runTimeout:     runTimeout,
		skipWarmUp:     cfg.SkipWarmUp,
		sem:            make(chan struct{}, poolSize),
	}, nil
}

// Judge runs every test case to completion and aggregates a scored verdict.
func (s *Service) Judge(ctx context.Context, languageID, code string, cases []TestCase) (res verdict.JudgeResult) {
	defer s.recoverJudge(ctx, &res)

	if len(cases) == 0 {
		return judgeErrorResult("no test cases supplied")
	}
	if err := s.acquireSlot(ctx); err != nil {
		return judgeErrorResult(err.Error())
	}
	defer s.releaseSlot()

	prep, fail := s.prepare(ctx, languageID, code)
	if fail != nil {
		return *fail
	}
	defer s.workspaces.Release(ctx, prep.ws)

	s.warmUp(ctx, prep)

	results := make([]verdict.CaseResult, 0, len(cases))
	for i, tc := range cases {
		out := s.runCase(ctx, prep, tc.Input)
		caseRes := verdict.Classify(i, out, tc.Expected)
		s.metrics.ObserveRun(ctx, languageID, string(caseRes.Status), caseRes.TimeMs)
		results = append(results, caseRes)
	}

	return verdict.JudgeResult{
		Status:  verdict.Aggregate(results),
		TimeMs:  verdict.SumTimeMs(results),
		Results: results,
		Score:   verdict.Score(results),
		Cached:  prep.cached,
	}
}

// RunOne executes the program once with the given input and reports its raw
// output. When expected is non-nil the output is also classified.
func (s *Service) RunOne(ctx context.Context, languageID, code, input string, expected *string) (res verdict.RunResult) {
	defer s.recoverRun(ctx, &res)

	if err := s.acquireSlot(ctx); err != nil {
		return verdict.RunResult{Status: verdict.StatusJudgeError, Message: err.Error()}
	}
	defer s.releaseSlot()

	prep, fail := s.prepare(ctx, languageID, code)
	if fail != nil {
		return verdict.RunResult{Status: fail.Status, Message: fail.Message}
	}
	defer s.workspaces.Release(ctx, prep.ws)

	s.warmUp(ctx, prep)
	res = s.runSample(ctx, prep, input)
	if expected != nil && res.Status == verdict.StatusAccepted && !verdict.OutputMatches(res.Output, *expected) {
		res.Status = verdict.StatusWrongAnswer
	}
	return res
}

// RunBatch executes the program against a list of inputs, stopping at the
// first non-accepted result.
func (s *Service) RunBatch(ctx context.Context, languageID, code string, inputs []string) (res verdict.BatchResult) {
	defer s.recoverBatch(ctx, &res)

	if len(inputs) == 0 {
		return verdict.BatchResult{Status: verdict.StatusJudgeError, Message: "no inputs supplied"}
	}
	if err := s.acquireSlot(ctx); err != nil {
		return verdict.BatchResult{Status: verdict.StatusJudgeError, Message: err.Error()}
	}
	defer s.releaseSlot()

	prep, fail := s.prepare(ctx, languageID, code)
	if fail != nil {
		return verdict.BatchResult{Status: fail.Status, Message: fail.Message}
	}
	defer s.workspaces.Release(ctx, prep.ws)

	s.warmUp(ctx, prep)

	batch := verdict.BatchResult{Status: verdict.StatusAccepted}
	for _, input := range inputs {
		sample := s.runSample(ctx, prep, input)
		batch.Results = append(batch.Results, sample)
		if sample.Status != verdict.StatusAccepted {
			batch.Status = sample.Status
			batch.Message = sample.Message
			break
		}
	}
	return batch
}

// prepared carries everything needed to execute one submission.
type prepared struct {
	lang   language.Spec
	tools  toolchain.Toolchain
	ws     workspace.Workspace
	runCmd []string
	cached bool
}

// prepare allocates the workspace and produces a runnable program, going
// through the compile cache for compiled languages. A non-nil fail result
// short-circuits the caller; the workspace is already released on that path.
func (s *Service) prepare(ctx context.Context, languageID, code string) (prepared, *verdict.JudgeResult) {
	lang, err := language.Lookup(languageID)
	if err != nil {
		fail := judgeErrorResult(err.Error())
		return prepared{}, &fail
	}

	ws, err := s.workspaces.Create(lang, code)
	if err != nil {
		logger.Error(ctx, "create workspace failed", zap.Error(err))
		fail := judgeErrorResult("workspace allocation failed")
		return prepared{}, &fail
	}

	p := prepared{
		lang:  lang,
		tools: s.locator.Resolve(lang.ID),
		ws:    ws,
	}

	if fail := s.compileStep(ctx, &p, code); fail != nil {
		s.workspaces.Release(ctx, ws)
		return prepared{}, fail
	}

	runCmd, err := language.BuildCommand(lang.RunCmdTpl, s.commandVars(p))
	if err != nil {
		s.workspaces.Release(ctx, ws)
		fail := judgeErrorResult(err.Error())
		return prepared{}, &fail
	}
	p.runCmd = runCmd
	return p, nil
}

// compileStep consults the artifact cache before invoking the compiler. A
// compile failure or timeout yields a Compile Error verdict with a bounded
// prefix of the compiler diagnostics and no case results.
func (s *Service) compileStep(ctx context.Context, p *prepared, code string) *verdict.JudgeResult {
	if !p.lang.CompileEnabled {
		return nil
	}

	key := cache.Key(p.lang.ID, code)
	if cachedDir, ok := s.cache.Get(key); ok {
		if err := s.cache.Fetch(cachedDir, p.ws.RootDir); err == nil {
			p.cached = true
			s.metrics.ObserveCompile(ctx, string(p.lang.ID), true, true, 0)
			return nil
		}
		logger.Warn(ctx, "fetch cached artifact failed, recompiling", zap.String("key", key))
	}

	cmd, err := language.BuildCommand(p.lang.CompileCmdTpl, s.commandVars(*p))
	if err != nil {
		fail := judgeErrorResult(err.Error())
		return &fail
	}

	out, err := s.runner.Exec(ctx, runner.Spec{
		Path:    cmd[0],
		Args:    cmd[1:],
		Dir:     p.ws.RootDir,
		Env:     p.lang.Env,
		Timeout: s.compileTimeout,
	})
	if err != nil {
		logger.Error(ctx, "compiler invocation failed", zap.Error(err))
		fail := judgeErrorResult("compiler invocation failed")
		return &fail
	}

	ok := !out.TimedOut && out.ExitCode == 0
	s.metrics.ObserveCompile(ctx, string(p.lang.ID), ok, false, out.Duration.Milliseconds())

	if out.TimedOut {
		fail := compileErrorResult("compilation timed out")
		return &fail
	}
	if out.ExitCode != 0 {
		diag := out.Stderr
		if diag == "" {
			diag = out.Stdout
		}
		fail := compileErrorResult(verdict.Truncate(diag))
		return &fail
	}

	if err := s.cache.Put(ctx, key, p.ws.RootDir, p.lang.ArtifactGlob); err != nil {
		// Only costs a recompile on the next identical submission.
		logger.Warn(ctx, "cache artifact failed", zap.Error(err))
	}
	return nil
}

// warmUp runs the program once with empty input and discards the result, so
// the first scored case does not pay first-invocation costs. Failures are
// swallowed on purpose.
func (s *Service) warmUp(ctx context.Context, p prepared) {
	if s.skipWarmUp {
		return
	}
	_, _ = s.runner.Exec(ctx, runner.Spec{
		Path:    p.runCmd[0],
		Args:    p.runCmd[1:],
		Dir:     p.ws.RootDir,
		Env:     p.lang.Env,
		Timeout: s.runTimeout,
	})
}

func (s *Service) runCase(ctx context.Context, p prepared, input string) verdict.Outcome {
	out, err := s.runner.Exec(ctx, runner.Spec{
		Path:    p.runCmd[0],
		Args:    p.runCmd[1:],
		Dir:     p.ws.RootDir,
		Stdin:   input,
		Env:     p.lang.Env,
		Timeout: s.runTimeout,
	})
	if err != nil {
		logger.Error(ctx, "case execution failed", zap.Error(err))
		return verdict.Outcome{ExitCode: -1, Stderr: "case execution failed"}
	}
	return out
}

func (s *Service) runSample(ctx context.Context, p prepared, input string) verdict.RunResult {
	out := s.runCase(ctx, p, input)
	res := verdict.RunResult{
		Output: out.Stdout,
		TimeMs: out.Duration.Milliseconds(),
	}
	switch {
	case out.TimedOut:
		res.Status = verdict.StatusTimeLimit
	case out.ExitCode != 0:
		res.Status = verdict.StatusRuntimeError
		res.Message = verdict.Truncate(out.Stderr)
	default:
		res.Status = verdict.StatusAccepted
	}
	s.metrics.ObserveRun(ctx, string(p.lang.ID), string(res.Status), res.TimeMs)
	return res
}

func (s *Service) commandVars(p prepared) map[string]string {
	return map[string]string{
		"compiler": p.tools.Compiler,
		"runtime":  p.tools.Runtime,
		"src":      p.ws.SourcePath,
		"bin":      p.ws.ExecutablePath,
		"dir":      p.ws.RootDir,
	}
}

func (s *Service) acquireSlot(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(slotAcquireWait):
		return appErr.New(appErr.JudgeQueueFull)
	}
}

func (s *Service) releaseSlot() {
	select {
	case <-s.sem:
	default:
	}
}

func (s *Service) recoverJudge(ctx context.Context, res *verdict.JudgeResult) {
	if r := recover(); r != nil {
		logger.Error(ctx, "judge panicked", zap.Any("panic", r))
		*res = judgeErrorResult("internal judge error")
	}
}

func (s *Service) recoverRun(ctx context.Context, res *verdict.RunResult) {
	if r := recover(); r != nil {
		logger.Error(ctx, "run panicked", zap.Any("panic", r))
		*res = verdict.RunResult{Status: verdict.StatusJudgeError, Message: "internal judge error"}
	}
}

func (s *Service) recoverBatch(ctx context.Context, res *verdict.BatchResult) {
	if r := recover(); r != nil {
		logger.Error(ctx, "batch run panicked", zap.Any("panic", r))
		*res = verdict.BatchResult{Status: verdict.StatusJudgeError, Message: "internal judge error"}
	}
}

func judgeErrorResult(msg string) verdict.JudgeResult {
	return verdict.JudgeResult{
		Status:  verdict.StatusJudgeError,
		Message: msg,
		Results: []verdict.CaseResult{},
	}
}

func compileErrorResult(msg string) verdict.JudgeResult {
	return verdict.JudgeResult{
		Status:  verdict.StatusCompileError,
		Message: msg,
		Results: []verdict.CaseResult{},
	}
}
