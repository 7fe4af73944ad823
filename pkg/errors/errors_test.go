package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCICDError_Error(t *testing.T) {
	err := ParseError("failed parsing artifacts", errors.New("unexpected end of JSON input"))
	want := "[PARSE] failed parsing artifacts: unexpected end of JSON input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := ConfigError("token or username/password required", nil)
	if bare.Error() != "[CONFIG] token or username/password required" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", TransportError("dial failed", nil))

	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"nil", nil, ErrConfig, false},
		{"plain error", errors.New("boom"), ErrConfig, false},
		{"matching", ConfigError("x", nil), ErrConfig, true},
		{"mismatch", ConfigError("x", nil), ErrParse, false},
		{"wrapped", wrapped, ErrTransport, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsType(tt.err, tt.errType); got != tt.want {
				t.Errorf("IsType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldBlockCI(t *testing.T) {
	for _, err := range []error{
		ConfigError("x", nil),
		ParseError("x", nil),
		ValidationError("x", nil),
		TransportError("x", nil),
		ApplicationError("x", nil),
	} {
		if !ShouldBlockCI(err) {
			t.Errorf("ShouldBlockCI(%v) = false, want true", err)
		}
	}

	if ShouldBlockCI(errors.New("untyped")) {
		t.Error("ShouldBlockCI(untyped) = true, want false")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(TransportError("connection refused", nil)) {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestMessage(t *testing.T) {
	err := fmt.Errorf("outer: %w", ApplicationError("bad field", errors.New("status 400")))
	if got := Message(err); got != "bad field" {
		t.Errorf("Message() = %q, want %q", got, "bad field")
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("Message() = %q, want %q", got, "plain")
	}
	if got := Message(nil); got != "" {
		t.Errorf("Message(nil) = %q, want empty", got)
	}
}

func TestWithContext(t *testing.T) {
	err := ApplicationError("not created", nil).WithContext("status", 500)
	if err.Context["status"] != 500 {
		t.Errorf("Context[status] = %v, want 500", err.Context["status"])
	}
}
