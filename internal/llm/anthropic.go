package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// AnthropicClient wraps the Anthropic SDK.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey, model string, timeout time.Duration) *AnthropicClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	opts := []option.RequestOption{option.WithRequestTimeout(timeout)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	c := anthropic.NewClient(opts...)
	return &AnthropicClient{
		client: &c,
		model:  model,
	}
}

// ChatWithTools sends the turn sequence with the tool catalog and returns
// the assistant turn, which may include tool-use requests.
func (c *AnthropicClient) ChatWithTools(ctx context.Context, req Request) (*Response, error) {
	apiTools := make([]anthropic.ToolUnionParam, len(req.Tools))
	for i, td := range req.Tools {
		props, _ := td.InputSchema["properties"].(map[string]any)
		schema := anthropic.ToolInputSchemaParam{
			Properties: props,
		}
		if required, ok := td.InputSchema["required"].([]string); ok {
			schema.Required = required
		} else if raw, ok := td.InputSchema["required"].([]any); ok {
			reqStrings := make([]string, len(raw))
			for j, r := range raw {
				reqStrings[j], _ = r.(string)
			}
			schema.Required = reqStrings
		}
		t := anthropic.ToolUnionParamOfTool(schema, td.Name)
		if td.Description != "" {
			t.OfTool.Description = param.NewOpt(td.Description)
		}
		apiTools[i] = t
	}

	apiMessages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
			for _, b := range msg.Content {
				if b.Type == "text" {
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				}
			}
			apiMessages = append(apiMessages, anthropic.NewUserMessage(blocks...))

		case "assistant":
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
			for _, b := range msg.Content {
				switch b.Type {
				case "text":
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				case "tool_use":
					if b.ToolCall != nil {
						var inputMap map[string]any
						_ = json.Unmarshal(b.ToolCall.Input, &inputMap)
						blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolCall.ID, inputMap, b.ToolCall.Name))
					}
				}
			}
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(blocks...))

		case "tool_result":
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, tr := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
			}
			apiMessages = append(apiMessages, anthropic.NewUserMessage(blocks...))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages:  apiMessages,
		Tools:     apiTools,
	}
	if req.Temperature > 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}
	switch req.ToolChoice.Type {
	case "tool":
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ToolChoice.Name},
		}
	case "auto":
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}
	if req.System != "" {
		sysBlocks := []anthropic.TextBlockParam{{Text: req.System}}
		sysBlocks[len(sysBlocks)-1].CacheControl = anthropic.NewCacheControlEphemeralParam()
		params.System = sysBlocks
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &Response{
		StopReason: string(resp.StopReason),
		Model:      string(resp.Model),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Content = append(result.Content, ContentBlock{
				Type: "text",
				Text: block.Text,
			})
		case "tool_use":
			toolUse := block.AsToolUse()
			result.Content = append(result.Content, ContentBlock{
				Type: "tool_use",
				ToolCall: &ToolCall{
					ID:    toolUse.ID,
					Name:  toolUse.Name,
					Input: toolUse.Input,
				},
			})
		}
	}

	return result, nil
}
