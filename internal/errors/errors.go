// Package errors defines the error taxonomy for the conversational core.
// Input violations, unsupported date expressions, and unknown tools are
// recoverable and surface as error tool-results; upstream failures are
// classified as retryable or permanent to drive the LLM retry policy.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType categorizes upstream errors for retry decisions.
type ErrorType string

const (
	// ErrorTypeRetryable indicates the error might succeed on retry.
	ErrorTypeRetryable ErrorType = "retryable"
	// ErrorTypePermanent indicates the error will not succeed on retry.
	ErrorTypePermanent ErrorType = "permanent"
	// ErrorTypePanic indicates a panic was recovered.
	ErrorTypePanic ErrorType = "panic"
)

// Violation is a named input-validation failure. It never reaches the LLM
// service as a crash; tool handlers convert it into an error result.
type Violation struct {
	Field  string
	Reason string
}

func (v *Violation) Error() string {
	if v.Field == "" {
		return v.Reason
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Reason)
}

// NewViolation creates a Violation for the given field.
func NewViolation(field, format string, args ...any) error {
	return &Violation{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is (or wraps) an input violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// UnsupportedExpressionError is returned by the relative-date resolver when
// no phrase class matches. It is surfaced verbatim so the caller can
// rephrase; the resolver never guesses a range.
type UnsupportedExpressionError struct {
	Phrase string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported date expression: %q", e.Phrase)
}

// IsUnsupportedExpression reports whether err is an unsupported-expression error.
func IsUnsupportedExpression(err error) bool {
	var u *UnsupportedExpressionError
	return errors.As(err, &u)
}

// UnknownToolError is produced when the LLM requests a tool absent from the
// catalog. The loop continues with a structured error result rather than
// aborting.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %q", e.Name)
}

// IsUnknownTool reports whether err is an unknown-tool error.
func IsUnknownTool(err error) bool {
	var u *UnknownToolError
	return errors.As(err, &u)
}

// RetryableError wraps errors that may succeed on retry: network timeouts,
// rate limits, temporary unavailability.
type RetryableError struct {
	Err  error
	Kind string
}

func (e *RetryableError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("[retryable:%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[retryable] %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// PermanentError wraps errors that will not succeed on retry: invalid
// arguments, authentication failures, missing endpoints.
type PermanentError struct {
	Err  error
	Kind string
}

func (e *PermanentError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("[permanent:%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[permanent] %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps an error as retryable.
func NewRetryableError(err error, kind string) error {
	return &RetryableError{Err: err, Kind: kind}
}

// NewPermanentError wraps an error as permanent.
func NewPermanentError(err error, kind string) error {
	return &PermanentError{Err: err, Kind: kind}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		return false
	}
	return ClassifyError(err) == ErrorTypeRetryable
}

// ClassifyError determines the error type based on error message patterns.
// Violations and unsupported expressions are always permanent.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}
	if IsViolation(err) || IsUnsupportedExpression(err) || IsUnknownTool(err) {
		return ErrorTypePermanent
	}

	msg := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"deadline exceeded",
		"temporary failure",
		"network is unreachable",
		"rate limit",
		"too many requests",
		"429",
		"503",
		"service unavailable",
		"temporarily unavailable",
		"internal server error",
		"502",
		"504",
		"gateway timeout",
		"overloaded",
		"try again",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeRetryable
		}
	}

	permanentPatterns := []string{
		"invalid argument",
		"bad request",
		"parse error",
		"unrecognized",
		"unknown",
		"not found",
		"404",
		"unauthorized",
		"forbidden",
		"401",
		"403",
		"panic:",
		"runtime error",
		"nil pointer",
	}
	for _, pattern := range permanentPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypePermanent
		}
	}

	// Unknown errors default to retryable; failing permanently on an
	// unclassified transport hiccup is worse than one wasted retry.
	return ErrorTypeRetryable
}

// RecoveryResult holds the result of a recovered panic.
type RecoveryResult struct {
	Recovered  bool
	PanicValue any
	ErrorMsg   string
	ErrorType  ErrorType
}

// RecoverPanic recovers from a panic and returns a RecoveryResult.
// Use with defer:
//
//	defer func() {
//	    if r := errors.RecoverPanic(recover()); r.Recovered {
//	        // Handle recovered panic
//	    }
//	}()
func RecoverPanic(r any) RecoveryResult {
	if r == nil {
		return RecoveryResult{Recovered: false}
	}

	result := RecoveryResult{
		Recovered:  true,
		PanicValue: r,
		ErrorType:  ErrorTypePanic,
	}

	switch v := r.(type) {
	case error:
		result.ErrorMsg = fmt.Sprintf("panic: %v", v)
	case string:
		result.ErrorMsg = fmt.Sprintf("panic: %s", v)
	default:
		result.ErrorMsg = fmt.Sprintf("panic: %+v", v)
	}

	return result
}

// CalculateBackoff calculates exponential backoff delay.
// baseDelay: initial delay; retryCount: current attempt (0-indexed);
// maxDelay: maximum delay cap.
func CalculateBackoff(baseDelay time.Duration, retryCount int, maxDelay time.Duration) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}

	delay := baseDelay * (1 << retryCount)

	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}

	return delay
}
