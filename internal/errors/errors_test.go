package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestViolation(t *testing.T) {
	err := NewViolation("days_ahead", "must be between %d and %d", 1, 365)
	if !IsViolation(err) {
		t.Error("expected IsViolation to be true")
	}
	want := "days_ahead: must be between 1 and 365"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !IsViolation(wrapped) {
		t.Error("expected IsViolation to see through wrapping")
	}
}

func TestViolationWithoutField(t *testing.T) {
	err := &Violation{Reason: "empty input"}
	if err.Error() != "empty input" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUnsupportedExpression(t *testing.T) {
	err := &UnsupportedExpressionError{Phrase: "semana que vem"}
	if !IsUnsupportedExpression(err) {
		t.Error("expected IsUnsupportedExpression to be true")
	}
	if IsViolation(err) {
		t.Error("unsupported expression must not be a violation")
	}
	if ClassifyError(err) != ErrorTypePermanent {
		t.Error("unsupported expression must classify as permanent")
	}
}

func TestUnknownTool(t *testing.T) {
	err := &UnknownToolError{Name: "get_weather"}
	if !IsUnknownTool(err) {
		t.Error("expected IsUnknownTool to be true")
	}
	if ClassifyError(err) != ErrorTypePermanent {
		t.Error("unknown tool must classify as permanent")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypePermanent},
		{"timeout", errors.New("request timeout"), ErrorTypeRetryable},
		{"rate limit", errors.New("rate limit exceeded"), ErrorTypeRetryable},
		{"overloaded", errors.New("overloaded_error: try later"), ErrorTypeRetryable},
		{"503", errors.New("status 503"), ErrorTypeRetryable},
		{"unauthorized", errors.New("401 unauthorized"), ErrorTypePermanent},
		{"not found", errors.New("rpc endpoint not found"), ErrorTypePermanent},
		{"bad request", errors.New("bad request: missing field"), ErrorTypePermanent},
		{"unclassified", errors.New("something odd happened"), ErrorTypeRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryableWrapping(t *testing.T) {
	base := errors.New("boom")
	err := NewRetryableError(base, "store")
	if !IsRetryable(err) {
		t.Error("expected IsRetryable to be true")
	}
	if !errors.Is(err, base) {
		t.Error("expected Unwrap to reach base error")
	}

	perm := NewPermanentError(base, "auth")
	var pe *PermanentError
	if !errors.As(perm, &pe) {
		t.Error("expected errors.As to find PermanentError")
	}
	if IsRetryable(perm) {
		t.Error("permanent wrapper must never be retryable, even with an unclassifiable message")
	}
}

func TestRecoverPanic(t *testing.T) {
	if r := RecoverPanic(nil); r.Recovered {
		t.Error("nil recover value must not report a panic")
	}

	r := RecoverPanic("boom")
	if !r.Recovered {
		t.Fatal("expected recovered panic")
	}
	if r.ErrorMsg != "panic: boom" {
		t.Errorf("ErrorMsg = %q", r.ErrorMsg)
	}
	if r.ErrorType != ErrorTypePanic {
		t.Errorf("ErrorType = %v", r.ErrorType)
	}

	r = RecoverPanic(errors.New("bad state"))
	if r.ErrorMsg != "panic: bad state" {
		t.Errorf("ErrorMsg = %q", r.ErrorMsg)
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	if got := CalculateBackoff(base, 0, 0); got != base {
		t.Errorf("attempt 0 = %v", got)
	}
	if got := CalculateBackoff(base, 2, 0); got != 400*time.Millisecond {
		t.Errorf("attempt 2 = %v", got)
	}
	if got := CalculateBackoff(base, 10, time.Second); got != time.Second {
		t.Errorf("capped = %v", got)
	}
	if got := CalculateBackoff(base, -1, 0); got != base {
		t.Errorf("negative attempt = %v", got)
	}
}
