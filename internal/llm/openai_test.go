package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIChatWithToolsForcedChoice(t *testing.T) {
	var captured openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := map[string]any{
			"model": "gpt-4o",
			"choices": []map[string]any{{
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "get_current_date",
							"arguments": `{}`,
						},
					}},
				},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", "gpt-4o", srv.URL, time.Second)
	resp, err := c.ChatWithTools(context.Background(), Request{
		System: "you are a sales assistant",
		Messages: []ToolMessage{{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: "quanto vendi hoje?"}},
		}},
		Tools: []ToolDef{{
			Name:        "get_current_date",
			Description: "Returns today's date",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		}},
		ToolChoice:  ForceTool("get_current_date"),
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("ChatWithTools error: %v", err)
	}

	// Request assembly
	if captured.Temperature == nil || *captured.Temperature != 0.2 {
		t.Error("temperature not forwarded")
	}
	choice, ok := captured.ToolChoice.(map[string]any)
	if !ok {
		t.Fatalf("tool_choice = %T, want forced-function object", captured.ToolChoice)
	}
	fn, _ := choice["function"].(map[string]any)
	if fn["name"] != "get_current_date" {
		t.Errorf("forced tool = %v", fn["name"])
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %s, want system", captured.Messages[0].Role)
	}

	// Response mapping
	if resp.StopReason != "tool_use" {
		t.Errorf("StopReason = %s", resp.StopReason)
	}
	calls := resp.ToolCalls()
	if len(calls) != 1 || calls[0].Name != "get_current_date" || calls[0].ID != "call_1" {
		t.Errorf("tool calls = %+v", calls)
	}
	if resp.Usage.InputTokens != 10 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestOpenAIChatWithToolsTextAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ToolChoice != "auto" {
			t.Errorf("tool_choice = %v, want auto", req.ToolChoice)
		}
		resp := map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "Você vendeu R$ 320,00 hoje.",
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-4o", srv.URL, time.Second)
	resp, err := c.ChatWithTools(context.Background(), Request{
		Messages:   []ToolMessage{{Role: "user", Content: []ContentBlock{{Type: "text", Text: "oi"}}}},
		ToolChoice: AutoToolChoice(),
	})
	if err != nil {
		t.Fatalf("ChatWithTools error: %v", err)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %s", resp.StopReason)
	}
	if resp.Text() != "Você vendeu R$ 320,00 hoje." {
		t.Errorf("Text = %q", resp.Text())
	}
}

func TestOpenAIToolResultMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openaiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		// assistant turn with tool call, then one role=tool message per result
		var toolMsgs []openaiMessage
		for _, m := range req.Messages {
			if m.Role == "tool" {
				toolMsgs = append(toolMsgs, m)
			}
		}
		if len(toolMsgs) != 1 {
			t.Errorf("tool messages = %d, want 1", len(toolMsgs))
		} else if toolMsgs[0].ToolCallID != "call_9" {
			t.Errorf("tool_call_id = %s", toolMsgs[0].ToolCallID)
		}
		resp := map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "done"},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-4o", srv.URL, time.Second)
	_, err := c.ChatWithTools(context.Background(), Request{
		Messages: []ToolMessage{
			{Role: "user", Content: []ContentBlock{{Type: "text", Text: "hi"}}},
			{Role: "assistant", Content: []ContentBlock{{Type: "tool_use", ToolCall: &ToolCall{ID: "call_9", Name: "get_current_date", Input: json.RawMessage(`{}`)}}}},
			{Role: "tool_result", ToolResults: []ToolResult{{ToolCallID: "call_9", Content: `{"date":"2025-09-24"}`}}},
		},
		ToolChoice: AutoToolChoice(),
	})
	if err != nil {
		t.Fatalf("ChatWithTools error: %v", err)
	}
}

func TestOpenAIErrorSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "gpt-4o", srv.URL, time.Second)
	_, err := c.ChatWithTools(context.Background(), Request{ToolChoice: AutoToolChoice()})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}
