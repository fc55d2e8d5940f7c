package llm

import "encoding/json"

// ToolDef defines a tool the LLM can call. The input schema is the exact
// JSON-schema object sent to the provider; it must stay stable across the
// whole conversation so tool selection stays stable.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall represents the LLM requesting a tool invocation. ID is the opaque
// correlation token the provider expects back on the matching result.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the response to a tool call.
type ToolResult struct {
	ToolCallID string `json:"tool_use_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ContentBlock is a single block in a message (text or tool_use).
type ContentBlock struct {
	Type     string    `json:"type"` // "text" or "tool_use"
	Text     string    `json:"text,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// ToolMessage is one conversation turn: user text, an assistant turn that
// may carry tool calls, or a tool_result turn.
type ToolMessage struct {
	Role        string         `json:"role"` // "user", "assistant", "tool_result"
	Content     []ContentBlock `json:"content,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
}

// ToolChoice directs the provider's tool selection for one call.
type ToolChoice struct {
	Type string `json:"type"`           // "auto" or "tool"
	Name string `json:"name,omitempty"` // set when Type == "tool"
}

// AutoToolChoice lets the model pick any tool or none.
func AutoToolChoice() ToolChoice { return ToolChoice{Type: "auto"} }

// ForceTool requires the model to invoke the named tool on this call.
func ForceTool(name string) ToolChoice { return ToolChoice{Type: "tool", Name: name} }

// Request is one call to the LLM service: the full turn sequence, the
// static catalog, the tool-choice directive, and the fixed sampling
// temperature.
type Request struct {
	System      string
	Messages    []ToolMessage
	Tools       []ToolDef
	ToolChoice  ToolChoice
	Temperature float64
}

// Usage reports provider token accounting.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the LLM's turn, possibly containing tool calls.
type Response struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"` // "end_turn", "tool_use", "max_tokens"
	Model      string         `json:"model,omitempty"`
	Usage      Usage          `json:"usage"`
}

// Text concatenates the response's text blocks.
func (r *Response) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// ToolCalls returns the tool invocations carried by the response, in order.
func (r *Response) ToolCalls() []*ToolCall {
	var calls []*ToolCall
	for _, block := range r.Content {
		if block.Type == "tool_use" && block.ToolCall != nil {
			calls = append(calls, block.ToolCall)
		}
	}
	return calls
}
