package verdict

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeLineEndings(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
	}{
		{"crlf vs lf", "3\r\n", "3\n"},
		{"trailing newline", "3\n", "3"},
		{"trailing spaces", "3  \n", "3"},
		{"trailing tabs", "3\t", "3"},
		{"multiline", "1 2\r\n3 4\r\n", "1 2\n3 4"},
		{"trailing blank lines", "ok\n\n\n", "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !OutputMatches(tc.a, tc.b) {
				t.Fatalf("expected %q to match %q", tc.a, tc.b)
			}
		})
	}
}

func TestNormalizeKeepsInteriorDifferences(t *testing.T) {
	if OutputMatches("1\n2", "1\n\n2") {
		t.Fatalf("interior blank line must not be ignored")
	}
	if OutputMatches("a b", "ab") {
		t.Fatalf("interior spaces must not be ignored")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		out      Outcome
		expected string
		want     Status
	}{
		{"accepted", Outcome{Stdout: "3\n"}, "3", StatusAccepted},
		{"wrong answer", Outcome{Stdout: "4\n"}, "3", StatusWrongAnswer},
		{"runtime error", Outcome{ExitCode: 1, Stderr: "boom"}, "3", StatusRuntimeError},
		{"timeout beats exit code", Outcome{ExitCode: -1, TimedOut: true}, "3", StatusTimeLimit},
		{"timeout beats matching output", Outcome{Stdout: "3", TimedOut: true}, "3", StatusTimeLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(0, tc.out, tc.expected)
			if res.Status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, res.Status)
			}
		})
	}
}

func TestClassifyCarriesStderrPrefix(t *testing.T) {
	res := Classify(2, Outcome{ExitCode: 2, Stderr: "segfault"}, "")
	if res.Index != 2 {
		t.Fatalf("expected index 2, got %d", res.Index)
	}
	if res.Message != "segfault" {
		t.Fatalf("expected stderr in message, got %q", res.Message)
	}
}

func TestClassifyTimeMs(t *testing.T) {
	res := Classify(0, Outcome{Stdout: "x", Duration: 1500 * time.Millisecond}, "x")
	if res.TimeMs != 1500 {
		t.Fatalf("expected 1500ms, got %d", res.TimeMs)
	}
}

func TestWorsePriority(t *testing.T) {
	order := []Status{StatusAccepted, StatusWrongAnswer, StatusRuntimeError, StatusTimeLimit}
	for i, lower := range order {
		for _, higher := range order[i:] {
			if got := Worse(lower, higher); got != higher {
				t.Fatalf("Worse(%s, %s) = %s", lower, higher, got)
			}
			if got := Worse(higher, lower); got != higher {
				t.Fatalf("Worse(%s, %s) = %s", higher, lower, got)
			}
		}
	}
}

func TestAggregate(t *testing.T) {
	results := []CaseResult{
		{Status: StatusAccepted},
		{Status: StatusWrongAnswer},
		{Status: StatusAccepted},
	}
	if got := Aggregate(results); got != StatusWrongAnswer {
		t.Fatalf("expected Wrong Answer, got %s", got)
	}

	results = append(results, CaseResult{Status: StatusTimeLimit}, CaseResult{Status: StatusRuntimeError})
	if got := Aggregate(results); got != StatusTimeLimit {
		t.Fatalf("expected Time Limit Exceeded, got %s", got)
	}

	if got := Aggregate(nil); got != StatusAccepted {
		t.Fatalf("expected Accepted for empty results, got %s", got)
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		results []CaseResult
		want    int
	}{
		{"all accepted", []CaseResult{{Status: StatusAccepted}, {Status: StatusAccepted}}, 100},
		{"half", []CaseResult{{Status: StatusAccepted}, {Status: StatusWrongAnswer}}, 50},
		{"one third rounds", []CaseResult{{Status: StatusAccepted}, {Status: StatusWrongAnswer}, {Status: StatusWrongAnswer}}, 33},
		{"two thirds rounds", []CaseResult{{Status: StatusAccepted}, {Status: StatusAccepted}, {Status: StatusWrongAnswer}}, 67},
		{"none", []CaseResult{{Status: StatusRuntimeError}}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.results); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSumTimeMs(t *testing.T) {
	results := []CaseResult{{TimeMs: 10}, {TimeMs: 25}, {TimeMs: 5}}
	if got := SumTimeMs(results); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
}

func TestTruncateBoundsMessage(t *testing.T) {
	long := strings.Repeat("e", messageLimit+100)
	got := Truncate(long)
	if len(got) > messageLimit+32 {
		t.Fatalf("truncated message too long: %d", len(got))
	}
	if !strings.HasSuffix(got, "(truncated)") {
		t.Fatalf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
	if Truncate("short") != "short" {
		t.Fatalf("short message must pass through")
	}
}
