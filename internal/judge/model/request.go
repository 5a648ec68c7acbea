// Package model defines the HTTP request payloads and their boundary
// validation.
package model

import (
	"judgecore/internal/judge/language"
	"judgecore/internal/judge/service"
	appErr "judgecore/pkg/errors"
)

// Caller-enforced preconditions: the engine trusts these bounds are checked
// before it is invoked.
const (
	MaxCodeBytes  = 100 * 1024
	MaxInputBytes = 10 * 1024 * 1024
)

// TestCase is one input/expected-output pair.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// SubmissionRequest asks for full judging with score.
type SubmissionRequest struct {
	Language  string     `json:"language" binding:"required"`
	Code      string     `json:"code" binding:"required"`
	TestCases []TestCase `json:"testCases" binding:"required"`
}

// Validate enforces the language allow-list and size bounds.
func (r SubmissionRequest) Validate() error {
	if err := validateProgram(r.Language, r.Code); err != nil {
		return err
	}
	if len(r.TestCases) == 0 {
		return appErr.ValidationError("testCases", "required")
	}
	for _, tc := range r.TestCases {
		if len(tc.Input) > MaxInputBytes || len(tc.ExpectedOutput) > MaxInputBytes {
			return appErr.New(appErr.CustomInputTooLarge)
		}
	}
	return nil
}

// Cases converts the payload into engine test cases.
func (r SubmissionRequest) Cases() []service.TestCase {
	cases := make([]service.TestCase, 0, len(r.TestCases))
	for _, tc := range r.TestCases {
		cases = append(cases, service.TestCase{Input: tc.Input, Expected: tc.ExpectedOutput})
	}
	return cases
}

// RunRequest asks for a single ad-hoc run, optionally checked against an
// expected output.
type RunRequest struct {
	Language       string  `json:"language" binding:"required"`
	Code           string  `json:"code" binding:"required"`
	Input          string  `json:"input"`
	ExpectedOutput *string `json:"expectedOutput,omitempty"`
}

// Validate enforces the language allow-list and size bounds.
func (r RunRequest) Validate() error {
	if err := validateProgram(r.Language, r.Code); err != nil {
		return err
	}
	if len(r.Input) > MaxInputBytes {
		return appErr.New(appErr.CustomInputTooLarge)
	}
	if r.ExpectedOutput != nil && len(*r.ExpectedOutput) > MaxInputBytes {
		return appErr.New(appErr.CustomInputTooLarge)
	}
	return nil
}

// BatchRequest asks for a fail-fast run over several inputs.
type BatchRequest struct {
	Language string   `json:"language" binding:"required"`
	Code     string   `json:"code" binding:"required"`
	Inputs   []string `json:"inputs" binding:"required"`
}

// Validate enforces the language allow-list and size bounds.
func (r BatchRequest) Validate() error {
	if err := validateProgram(r.Language, r.Code); err != nil {
		return err
	}
	if len(r.Inputs) == 0 {
		return appErr.ValidationError("inputs", "required")
	}
	for _, input := range r.Inputs {
		if len(input) > MaxInputBytes {
			return appErr.New(appErr.CustomInputTooLarge)
		}
	}
	return nil
}

func validateProgram(languageID, code string) error {
	if !language.Supported(languageID) {
		return appErr.Newf(appErr.LanguageNotSupported, "unsupported language: %s", languageID)
	}
	if code == "" {
		return appErr.ValidationError("code", "required")
	}
	if len(code) > MaxCodeBytes {
		return appErr.New(appErr.CodeTooLarge)
	}
	return nil
}
