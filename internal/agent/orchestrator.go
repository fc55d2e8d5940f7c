// Package agent runs the bounded tool-use loop that turns one merchant
// message into one reply. The loop is hard-capped, the first iteration always
// forces a tool, and every tool call is isolated: a single bad call degrades
// one result, never the turn.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/balcaohq/balcao/internal/config"
	"github.com/balcaohq/balcao/internal/llm"
	"github.com/balcaohq/balcao/internal/tools"
)

// FallbackReply is returned whenever the loop cannot produce a grounded
// answer: iteration exhaustion, provider failure, or an empty final turn.
const FallbackReply = "Não consegui concluir sua solicitação agora. Pode reformular a pergunta ou tentar de novo em instantes?"

// Orchestrator drives the LLM/tool loop for one merchant turn at a time.
// It is stateless across turns and safe for concurrent use.
type Orchestrator struct {
	client   llm.ToolClient
	registry *tools.Registry
	catalog  []llm.ToolDef
	cfg      config.AgentConfig
	timezone string
	logger   *slog.Logger
}

// New builds an orchestrator. The catalog is captured once so every request
// in the process presents the same tool surface.
func New(client llm.ToolClient, registry *tools.Registry, cfg config.AgentConfig, timezone string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client:   client,
		registry: registry,
		catalog:  tools.Catalog(),
		cfg:      cfg,
		timezone: timezone,
		logger:   logger,
	}
}

// TurnRequest is one inbound merchant message plus its identity context.
// History carries prior turns verbatim; the orchestrator appends to it but
// never rewrites it.
type TurnRequest struct {
	MerchantID   string
	MerchantName string
	Message      string
	History      []llm.ToolMessage
}

// TurnResult is the orchestrator's answer for one turn.
type TurnResult struct {
	Reply    string
	Fallback bool
	Trace    *Trace
}

// Run executes the bounded loop. It never returns an error to the caller for
// provider or tool failures; those degrade into the fallback reply so the
// merchant always gets an answer.
func (o *Orchestrator) Run(ctx context.Context, req TurnRequest) *TurnResult {
	trace := newTrace()
	defer func() { trace.FinishedAt = time.Now() }()

	messages := append([]llm.ToolMessage{}, req.History...)
	messages = append(messages, llm.ToolMessage{
		Role:    "user",
		Content: []llm.ContentBlock{{Type: "text", Text: req.Message}},
	})

	system := buildSystemPrompt(req.MerchantName, o.timezone)

	for iteration := 1; iteration <= o.cfg.MaxIterations; iteration++ {
		choice := llm.AutoToolChoice()
		forced := ""
		if iteration == 1 {
			forced = firstTool(req.Message)
			choice = llm.ForceTool(forced)
		}

		llmReq := llm.Request{
			System:      system,
			Messages:    messages,
			Tools:       o.catalog,
			ToolChoice:  choice,
			Temperature: o.cfg.Temperature,
		}

		resp, err := llm.RetryCall(ctx, o.cfg.MaxRetries, o.logger, func() (*llm.Response, error) {
			return o.client.ChatWithTools(ctx, llmReq)
		})
		if err != nil {
			o.logger.Error("llm call failed, falling back",
				slog.String("trace_id", trace.ID),
				slog.Int("iteration", iteration),
				slog.String("error", err.Error()))
			trace.Fallback = true
			return &TurnResult{Reply: FallbackReply, Fallback: true, Trace: trace}
		}

		iterTrace := IterationTrace{
			ForcedTool: forced,
			StopReason: resp.StopReason,
			Usage:      resp.Usage,
		}

		calls := resp.ToolCalls()
		if len(calls) == 0 {
			trace.Iterations = append(trace.Iterations, iterTrace)
			reply := strings.TrimSpace(resp.Text())
			if reply == "" {
				trace.Fallback = true
				return &TurnResult{Reply: FallbackReply, Fallback: true, Trace: trace}
			}
			return &TurnResult{Reply: reply, Trace: trace}
		}

		messages = append(messages, llm.ToolMessage{Role: "assistant", Content: resp.Content})

		results, callTraces := o.executeCalls(ctx, req.MerchantID, calls)
		iterTrace.ToolCalls = callTraces
		trace.Iterations = append(trace.Iterations, iterTrace)

		messages = append(messages, llm.ToolMessage{Role: "tool_result", ToolResults: results})
	}

	o.logger.Warn("iteration budget exhausted, falling back",
		slog.String("trace_id", trace.ID),
		slog.Int("iterations", o.cfg.MaxIterations))
	trace.Fallback = true
	return &TurnResult{Reply: FallbackReply, Fallback: true, Trace: trace}
}

// executeCalls runs all sibling tool calls from one assistant turn
// concurrently and returns their results in the original call order. Each
// slot is written by exactly one goroutine.
func (o *Orchestrator) executeCalls(ctx context.Context, merchantID string, calls []*llm.ToolCall) ([]llm.ToolResult, []ToolCallTrace) {
	results := make([]llm.ToolResult, len(calls))
	traces := make([]ToolCallTrace, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call *llm.ToolCall) {
			defer wg.Done()
			started := time.Now()
			res := o.executeOne(ctx, merchantID, call)
			results[i] = llm.ToolResult{
				ToolCallID: call.ID,
				Content:    res.Content(),
				IsError:    res.IsError,
			}
			traces[i] = ToolCallTrace{
				Name:     call.Name,
				Status:   res.Status,
				IsError:  res.IsError,
				Duration: time.Since(started),
			}
		}(i, call)
	}
	wg.Wait()

	for i, tr := range traces {
		o.logger.Info("tool executed",
			slog.String("tool", tr.Name),
			slog.String("status", tr.Status),
			slog.Duration("duration", tr.Duration),
			slog.Int("index", i))
	}
	return results, traces
}

// executeOne lifts one call's raw JSON arguments, injects the merchant
// identity if the model omitted it, and dispatches. Argument injection is
// additive only: a merchant_id supplied by the model is left untouched.
func (o *Orchestrator) executeOne(ctx context.Context, merchantID string, call *llm.ToolCall) tools.Result {
	args := map[string]any{}
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &args); err != nil {
			return errorToolResult(fmt.Sprintf("tool %s: malformed arguments: %v", call.Name, err))
		}
	}
	if _, ok := args["merchant_id"]; !ok {
		args["merchant_id"] = merchantID
	}
	return o.registry.Dispatch(ctx, tools.Invocation{Name: call.Name, Args: args})
}

func errorToolResult(message string) tools.Result {
	return tools.Result{
		Status:  tools.StatusError,
		Message: message,
		Summary: message,
		IsError: true,
	}
}
