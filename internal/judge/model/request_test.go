package model

import (
	"strings"
	"testing"

	appErr "judgecore/pkg/errors"
)

func validSubmission() SubmissionRequest {
	return SubmissionRequest{
		Language:  "python",
		Code:      "print(1)",
		TestCases: []TestCase{{Input: "", ExpectedOutput: "1"}},
	}
}

func TestSubmissionValidateOK(t *testing.T) {
	if err := validSubmission().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestSubmissionValidateLanguageAllowList(t *testing.T) {
	req := validSubmission()
	req.Language = "perl"
	err := req.Validate()
	if err == nil {
		t.Fatalf("expected rejection for unlisted language")
	}
	if appErr.GetCode(err) != appErr.LanguageNotSupported {
		t.Fatalf("expected LanguageNotSupported, got %v", appErr.GetCode(err))
	}
}

func TestSubmissionValidateCodeBounds(t *testing.T) {
	req := validSubmission()
	req.Code = ""
	if err := req.Validate(); err == nil {
		t.Fatalf("expected rejection for empty code")
	}

	req = validSubmission()
	req.Code = strings.Repeat("a", MaxCodeBytes+1)
	err := req.Validate()
	if err == nil {
		t.Fatalf("expected rejection for oversized code")
	}
	if appErr.GetCode(err) != appErr.CodeTooLarge {
		t.Fatalf("expected CodeTooLarge, got %v", appErr.GetCode(err))
	}
}

func TestSubmissionValidateRequiresCases(t *testing.T) {
	req := validSubmission()
	req.TestCases = nil
	if err := req.Validate(); err == nil {
		t.Fatalf("expected rejection for missing test cases")
	}
}

func TestSubmissionCasesConversion(t *testing.T) {
	req := SubmissionRequest{
		Language: "python",
		Code:     "x",
		TestCases: []TestCase{
			{Input: "1", ExpectedOutput: "2"},
			{Input: "3", ExpectedOutput: "4"},
		},
	}
	cases := req.Cases()
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[1].Input != "3" || cases[1].Expected != "4" {
		t.Fatalf("case conversion mismatch: %+v", cases[1])
	}
}

func TestRunRequestValidateInputBound(t *testing.T) {
	req := RunRequest{
		Language: "python",
		Code:     "x",
		Input:    strings.Repeat("a", MaxInputBytes+1),
	}
	err := req.Validate()
	if err == nil {
		t.Fatalf("expected rejection for oversized input")
	}
	if appErr.GetCode(err) != appErr.CustomInputTooLarge {
		t.Fatalf("expected CustomInputTooLarge, got %v", appErr.GetCode(err))
	}
}

func TestRunRequestValidateExpectedBound(t *testing.T) {
	big := strings.Repeat("a", MaxInputBytes+1)
	req := RunRequest{Language: "python", Code: "x", ExpectedOutput: &big}
	if err := req.Validate(); err == nil {
		t.Fatalf("expected rejection for oversized expected output")
	}
}

func TestBatchRequestValidate(t *testing.T) {
	req := BatchRequest{Language: "python", Code: "x"}
	if err := req.Validate(); err == nil {
		t.Fatalf("expected rejection for missing inputs")
	}

	req.Inputs = []string{"a", "b"}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}
}
