package tools

import (
	"encoding/json"
	"fmt"
)

// Result status values. "no_data" means the operation succeeded but found
// nothing in scope; "zero" means records exist and their aggregate is
// legitimately zero. The LLM distinguishes them without re-querying.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusZero   = "zero"
	StatusError  = "error"
)

// Result is the normalized outcome of one tool invocation. Exactly one is
// produced per invocation; a handler either returns a complete Result or an
// error Result, never panics past its own boundary.
type Result struct {
	Status string `json:"status"`
	// Message explains no_data, zero, and error outcomes.
	Message string `json:"message,omitempty"`
	// Payload is the structured data for ok and zero outcomes.
	Payload any `json:"data,omitempty"`
	// Summary is a one-liner suitable for direct display; callers never
	// need to parse Payload just to show a human something.
	Summary string `json:"summary"`
	IsError bool   `json:"-"`
}

// Content renders the result as the JSON string handed back to the LLM.
func (r Result) Content() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":"encode result: %v"}`, err)
	}
	return string(data)
}

func okResult(payload any, summary string) Result {
	return Result{Status: StatusOK, Payload: payload, Summary: summary}
}

func noDataResult(message string) Result {
	return Result{Status: StatusNoData, Message: message, Summary: message}
}

func zeroResult(payload any, message string) Result {
	return Result{Status: StatusZero, Payload: payload, Message: message, Summary: message}
}

func errorResult(message string) Result {
	return Result{Status: StatusError, Message: message, Summary: message, IsError: true}
}
