// Package llm provides a provider-agnostic interface for tool-use LLM calls.
package llm

import "context"

// ToolClient is the boundary the orchestrator drives. One call sends the
// full turn sequence plus the static catalog and yields one assistant turn.
type ToolClient interface {
	ChatWithTools(ctx context.Context, req Request) (*Response, error)
}
