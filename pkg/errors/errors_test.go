package errors

import (
	"errors"
	"fmt"
	"testing"
)

type positioned struct{ msg string }

func (p *positioned) Error() string { return p.msg }
func (p *positioned) Code() Code    { return ErrCodeSyntax }

func TestNew(t *testing.T) {
	err := New(ErrCodeResolve, "unknown column: %s", "price")

	if err.Code != ErrCodeResolve {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeResolve)
	}

	if err.Message != "unknown column: price" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown column: price")
	}

	expected := "RESOLVE_ERROR: unknown column: price"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRender, cause, "encode png")

	if err.Code != ErrCodeRender {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRender)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeData, "test"),
			code:     ErrCodeData,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeData, "test"),
			code:     ErrCodeSchema,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRender, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeRender,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("transform: %w", New(ErrCodeData, "bad cell")),
			code:     ErrCodeData,
			expected: true,
		},
		{
			name:     "coder type",
			err:      fmt.Errorf("parse: %w", &positioned{"unexpected token"}),
			code:     ErrCodeSyntax,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeSchema, "test"),
			expected: ErrCodeSchema,
		},
		{
			name:     "Coder type",
			err:      &positioned{"x"},
			expected: ErrCodeSyntax,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "wrapped cause",
			err:      Wrap(ErrCodeRender, errors.New("disk full"), "write svg"),
			expected: "write svg: disk full",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(New(ErrCodeData, "x")) {
		t.Error("DATA_ERROR should be a user error")
	}
	if !IsUserError(&positioned{"x"}) {
		t.Error("syntax errors should be user errors")
	}
	if IsUserError(New(ErrCodeRender, "x")) {
		t.Error("RENDER_ERROR should not be a user error")
	}
	if IsUserError(errors.New("plain")) {
		t.Error("uncoded errors should not be user errors")
	}
}
