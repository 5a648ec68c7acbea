// Package verdict defines execution outcomes, per-case classification and
// submission-level aggregation.
package verdict

import (
	"math"
	"strings"
	"time"
)

// Status represents the outcome of a case or a whole submission.
type Status string

const (
	StatusAccepted     Status = "Accepted"
	StatusWrongAnswer  Status = "Wrong Answer"
	StatusRuntimeError Status = "Runtime Error"
	StatusTimeLimit    Status = "Time Limit Exceeded"
	StatusCompileError Status = "Compile Error"
	StatusJudgeError   Status = "Judge Error"
)

// statusPriority orders case statuses for aggregation. Higher wins.
var statusPriority = map[Status]int{
	StatusAccepted:     0,
	StatusWrongAnswer:  1,
	StatusRuntimeError: 2,
	StatusTimeLimit:    3,
}

// Worse returns the status with the higher aggregation priority.
func Worse(a, b Status) Status {
	if statusPriority[b] > statusPriority[a] {
		return b
	}
	return a
}

// Outcome captures raw data from one process execution.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// CaseResult contains the verdict for one test case.
type CaseResult struct {
	Index   int    `json:"index"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	TimeMs  int64  `json:"timeMs"`
}

// JudgeResult is the unified response structure for a full submission.
type JudgeResult struct {
	Status  Status       `json:"status"`
	Message string       `json:"message,omitempty"`
	TimeMs  int64        `json:"timeMs"`
	Results []CaseResult `json:"results"`
	Score   int          `json:"score"`
	Cached  bool         `json:"cached"`
}

// RunResult is the response for a single ad-hoc run.
type RunResult struct {
	Status  Status `json:"status"`
	Output  string `json:"output"`
	Message string `json:"message,omitempty"`
	TimeMs  int64  `json:"timeMs"`
}

// BatchResult is the response for a fail-fast multi-input run.
type BatchResult struct {
	Status  Status      `json:"status"`
	Message string      `json:"message,omitempty"`
	Results []RunResult `json:"results"`
}

// messageLimit bounds stderr prefixes carried in verdict messages.
const messageLimit = 4096

// Truncate bounds a diagnostic message to messageLimit bytes.
func Truncate(s string) string {
	if len(s) <= messageLimit {
		return s
	}
	return s[:messageLimit] + "\n... (truncated)"
}

// Normalize converts line endings to LF, trims trailing whitespace on each
// line and drops trailing blank lines, so cosmetic differences never flip a
// verdict.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := strings.Join(lines, "\n")
	return strings.TrimRight(out, "\n")
}

// OutputMatches compares actual against expected output after normalization.
// No partial or fuzzy matching.
func OutputMatches(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}

// Classify maps one execution outcome and its expected output to a case
// verdict. Timeout beats runtime error beats wrong answer.
func Classify(index int, out Outcome, expected string) CaseResult {
	res := CaseResult{
		Index:  index,
		TimeMs: out.Duration.Milliseconds(),
	}
	switch {
	case out.TimedOut:
		res.Status = StatusTimeLimit
	case out.ExitCode != 0:
		res.Status = StatusRuntimeError
		res.Message = Truncate(out.Stderr)
	case OutputMatches(out.Stdout, expected):
		res.Status = StatusAccepted
	default:
		res.Status = StatusWrongAnswer
	}
	return res
}

// Aggregate returns the worst case status by priority. Defaults to Accepted
// for an empty list.
func Aggregate(results []CaseResult) Status {
	status := StatusAccepted
	for _, r := range results {
		status = Worse(status, r.Status)
	}
	return status
}

// Score computes round(100 * accepted / total). Zero when there are no
// results.
func Score(results []CaseResult) int {
	if len(results) == 0 {
		return 0
	}
	accepted := 0
	for _, r := range results {
		if r.Status == StatusAccepted {
			accepted++
		}
	}
	return int(math.Round(100 * float64(accepted) / float64(len(results))))
}

// SumTimeMs returns the total elapsed time across all cases.
func SumTimeMs(results []CaseResult) int64 {
	var total int64
	for _, r := range results {
		total += r.TimeMs
	}
	return total
}
