package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/balcaohq/balcao/internal/llm"
)

// ToolCallTrace records one tool execution inside a turn.
type ToolCallTrace struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	IsError  bool          `json:"is_error"`
	Duration time.Duration `json:"duration"`
}

// IterationTrace records one LLM round trip and the tool work it triggered.
type IterationTrace struct {
	ForcedTool string          `json:"forced_tool,omitempty"`
	StopReason string          `json:"stop_reason"`
	Usage      llm.Usage       `json:"usage"`
	ToolCalls  []ToolCallTrace `json:"tool_calls,omitempty"`
}

// Trace is the audit record of one orchestrated turn.
type Trace struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Iterations []IterationTrace `json:"iterations"`
	Fallback   bool             `json:"fallback"`
}

func newTrace() *Trace {
	return &Trace{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// LLMCalls reports how many provider round trips the turn consumed.
func (t *Trace) LLMCalls() int { return len(t.Iterations) }

// ToolCallCount reports the total tool executions across all iterations.
func (t *Trace) ToolCallCount() int {
	n := 0
	for _, it := range t.Iterations {
		n += len(it.ToolCalls)
	}
	return n
}
