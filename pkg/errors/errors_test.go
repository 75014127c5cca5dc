package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDeclaration, "test message: %s", "value")

	if err.Code != ErrCodeInvalidDeclaration {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDeclaration)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_DECLARATION: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
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
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeNetwork, false},
		{"standard error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
		{
			"nested code behind wrapper",
			Wrap(ErrCodeResolution, New(ErrCodeNoVersions, "none"), "resolve x"),
			ErrCodeNoVersions,
			true,
		},
		{
			"outer code of wrapper",
			Wrap(ErrCodeResolution, New(ErrCodeNoVersions, "none"), "resolve x"),
			ErrCodeResolution,
			true,
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
	if got := GetCode(New(ErrCodeNoVersions, "x")); got != ErrCodeNoVersions {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNoVersions)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "bad input")); got != "bad input" {
		t.Errorf("UserMessage() = %q, want %q", got, "bad input")
	}
	wrapped := Wrap(ErrCodeResolution, New(ErrCodeNoVersions, "no versions of x"), "resolve x")
	if got, want := UserMessage(wrapped), "resolve x: no versions of x"; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}
