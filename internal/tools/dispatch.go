package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/balcaohq/balcao/internal/config"
	berrors "github.com/balcaohq/balcao/internal/errors"
	"github.com/balcaohq/balcao/internal/store"
)

// Invocation is one tool call requested by the LLM, after the raw JSON
// arguments have been lifted into a map at the dispatch boundary.
type Invocation struct {
	Name string
	Args map[string]any
}

// handler executes one tool. Handlers validate first, call the store at
// most once, and classify the outcome into a Result shape.
type handler func(ctx context.Context, r *Registry, args map[string]any) Result

// Registry binds the catalog's handlers to the backing store and tool
// bounds. Safe for unsynchronized concurrent reads after construction.
type Registry struct {
	store store.Store
	cfg   config.ToolsConfig
	now   func() time.Time

	handlers map[string]handler
}

// NewRegistry builds the dispatch table.
func NewRegistry(st store.Store, cfg config.ToolsConfig) *Registry {
	r := &Registry{
		store: st,
		cfg:   cfg,
		now:   time.Now,
	}
	r.handlers = map[string]handler{
		ToolCurrentDate:          handleCurrentDate,
		ToolDailySales:           handleDailySales,
		ToolSalesSummary:         handleSalesSummary,
		ToolSalesForPeriod:       handleSalesForPeriod,
		ToolRecentSales:          handleRecentSales,
		ToolTopProducts:          handleTopProducts,
		ToolExpensesSummary:      handleExpensesSummary,
		ToolUpcomingAppointments: handleUpcomingAppointments,
		ToolCustomerHistory:      handleCustomerHistory,
		ToolRecordSale:           handleRecordSale,
	}
	return r
}

// WithClock overrides the registry clock. Test hook.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Dispatch executes one invocation. An unknown tool name is not an internal
// error: it yields a structured error Result so the loop can continue. A
// panicking handler is likewise contained to this one call.
func (r *Registry) Dispatch(ctx context.Context, inv Invocation) (result Result) {
	defer func() {
		if rec := berrors.RecoverPanic(recover()); rec.Recovered {
			result = errorResult(fmt.Sprintf("tool %s failed: %s", inv.Name, rec.ErrorMsg))
		}
	}()

	h, ok := r.handlers[inv.Name]
	if !ok {
		err := &berrors.UnknownToolError{Name: inv.Name}
		return errorResult(err.Error())
	}
	return h(ctx, r, inv.Args)
}

// decodeInput lifts the untyped argument map into the handler's typed input
// struct. Weak typing tolerates JSON numbers arriving as float64 for
// integer fields.
func decodeInput(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return berrors.NewViolation("arguments", "malformed arguments: %v", err)
	}
	return nil
}

// storeFailure classifies a backing-store error for the LLM. ErrNoData is
// handled by the callers; everything else becomes an error Result scoped to
// this one call.
func storeFailure(toolName string, err error) Result {
	return errorResult(fmt.Sprintf("%s: backing store unavailable: %v", toolName, err))
}
