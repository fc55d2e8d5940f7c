package llm

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds one provider round trip when no timeout is
// configured. Tool-use turns with large prompts can legitimately take tens
// of seconds; a hung connection must still fail eventually.
const DefaultTimeout = 60 * time.Second

// ProviderConfig holds what's needed to construct an LLM client.
type ProviderConfig struct {
	Provider string // "anthropic" or "openai"
	Model    string
	APIKey   string
	BaseURL  string        // optional: override API base URL (for OpenAI-compatible endpoints)
	Timeout  time.Duration // per-call HTTP timeout; DefaultTimeout when zero
}

// NewFromConfig creates the appropriate ToolClient based on provider name.
func NewFromConfig(cfg ProviderConfig) (ToolClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.Timeout), nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case "":
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider in balcao.json)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: anthropic, openai)", cfg.Provider)
	}
}
