// Package router decides what an inbound message means before the LLM ever
// sees it: a bare number answering an open sale-amount prompt is recorded
// directly; everything else becomes a conversational turn. Every inbound and
// outbound message is logged exactly once.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/balcaohq/balcao/internal/agent"
	"github.com/balcaohq/balcao/internal/messaging"
	"github.com/balcaohq/balcao/internal/money"
	"github.com/balcaohq/balcao/internal/state"
	"github.com/balcaohq/balcao/internal/store"
)

// DefaultPendingTTL is how long a sale-amount prompt stays answerable. After
// that a bare number is ambiguous and goes to the conversational path.
const DefaultPendingTTL = 24 * time.Hour

// Reply texts for the pending-amount short circuit.
const (
	saleRecordedReply  = "Venda de R$ %s registrada. Obrigado!"
	amountUnclearReply = "Não entendi o valor. Pode mandar só o número? Por exemplo: 150 ou 149,90."
)

// TurnRunner runs one conversational turn. Satisfied by agent.Orchestrator.
type TurnRunner interface {
	Run(ctx context.Context, req agent.TurnRequest) *agent.TurnResult
}

// Router routes inbound messages between the pending-reply short circuit and
// the agent loop.
type Router struct {
	db           *state.DB
	store        store.Store
	orchestrator TurnRunner
	sender       messaging.Sender
	logger       *slog.Logger
	pendingTTL   time.Duration
	now          func() time.Time
}

// New builds a router with the default pending-reply TTL.
func New(db *state.DB, st store.Store, orch TurnRunner, sender messaging.Sender, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		db:           db,
		store:        st,
		orchestrator: orch,
		sender:       sender,
		logger:       logger,
		pendingTTL:   DefaultPendingTTL,
		now:          time.Now,
	}
}

// WithPendingTTL overrides the pending-reply expiry window.
func (r *Router) WithPendingTTL(ttl time.Duration) *Router {
	r.pendingTTL = ttl
	return r
}

// WithClock overrides the router clock. Test hook.
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// HandleBatch processes one webhook delivery. Non-text messages are dropped
// up front; each text message is handled independently so one failure never
// blocks its siblings.
func (r *Router) HandleBatch(ctx context.Context, batch messaging.InboundBatch) {
	for _, msg := range batch.TextMessages() {
		if err := r.HandleInbound(ctx, msg); err != nil {
			r.logger.Error("inbound message failed",
				slog.String("message_id", msg.ID),
				slog.String("merchant_id", msg.MerchantID),
				slog.String("error", err.Error()))
		}
	}
}

// HandleInbound processes one text message end to end: idempotency check,
// route decision, reply composition, outbound send. A redelivered message
// (same idempotency key) is dropped silently.
func (r *Router) HandleInbound(ctx context.Context, msg messaging.InboundMessage) error {
	traceID := uuid.NewString()

	msgID := msg.ID
	if msgID == "" {
		// Some providers omit message ids; bucket by minute so a redelivery
		// burst still dedupes without dropping later distinct messages.
		msgID = msg.Timestamp.UTC().Truncate(time.Minute).Format(time.RFC3339)
	}

	inKey := idempotencyKey(state.DirectionIn, msg.Sender, msgID)
	inserted, err := r.db.LogMessage(inKey, msg.MerchantID, state.DirectionIn, msg.Sender, msg.Text, traceID)
	if err != nil {
		return fmt.Errorf("log inbound: %w", err)
	}
	if !inserted {
		r.logger.Info("duplicate inbound dropped",
			slog.String("message_id", msg.ID),
			slog.String("sender", msg.Sender))
		return nil
	}

	reply, err := r.route(ctx, msg, traceID)
	if err != nil {
		return err
	}
	if reply == "" {
		return nil
	}

	outKey := idempotencyKey(state.DirectionOut, msg.Sender, msgID)
	if _, err := r.db.LogMessage(outKey, msg.MerchantID, state.DirectionOut, msg.Sender, reply, traceID); err != nil {
		return fmt.Errorf("log outbound: %w", err)
	}
	if err := r.sender.Send(ctx, msg.MerchantID, msg.Sender, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// route picks the handling path and returns the reply text.
func (r *Router) route(ctx context.Context, msg messaging.InboundMessage, traceID string) (string, error) {
	pending, err := r.db.FindOpenPendingReply(msg.MerchantID, msg.Sender)
	if err != nil {
		return "", fmt.Errorf("find pending reply: %w", err)
	}

	if pending != nil && pending.Age(r.now()) > r.pendingTTL {
		if err := r.db.ResolvePendingReply(pending.ID, state.PendingExpired); err != nil {
			return "", fmt.Errorf("expire pending reply: %w", err)
		}
		r.logger.Info("pending reply expired",
			slog.String("pending_id", pending.ID),
			slog.String("sender", msg.Sender))
		pending = nil
	}

	if pending != nil {
		return r.handlePendingAmount(ctx, msg, pending)
	}

	result := r.orchestrator.Run(ctx, agent.TurnRequest{
		MerchantID: msg.MerchantID,
		Message:    msg.Text,
	})
	r.logger.Info("turn completed",
		slog.String("trace_id", result.Trace.ID),
		slog.Int("llm_calls", result.Trace.LLMCalls()),
		slog.Int("tool_calls", result.Trace.ToolCallCount()),
		slog.Bool("fallback", result.Fallback))
	return result.Reply, nil
}

// handlePendingAmount treats the message as the answer to an open
// sale-amount prompt. A parseable amount records the sale and closes the
// prompt; anything else asks for clarification and leaves the prompt open.
func (r *Router) handlePendingAmount(ctx context.Context, msg messaging.InboundMessage, pending *state.PendingReply) (string, error) {
	amount, err := money.ParseAmount(msg.Text)
	if err != nil {
		r.logger.Info("pending amount unclear",
			slog.String("pending_id", pending.ID),
			slog.String("text", msg.Text))
		return amountUnclearReply, nil
	}

	loc := r.now().Location()
	sale, err := r.store.RecordSale(ctx, msg.MerchantID, store.NewSale{
		Amount:      amount,
		Description: pending.Context,
		Date:        r.now().In(loc).Format("2006-01-02"),
		Source:      "reminder_reply",
	})
	if err != nil {
		// Leave the prompt open so the merchant can simply resend the number.
		return "", fmt.Errorf("record sale from pending reply: %w", err)
	}

	if err := r.db.ResolvePendingReply(pending.ID, state.PendingCompleted); err != nil {
		return "", fmt.Errorf("complete pending reply: %w", err)
	}
	r.logger.Info("sale recorded from pending reply",
		slog.String("pending_id", pending.ID),
		slog.String("sale_id", sale.ID))
	return fmt.Sprintf(saleRecordedReply, sale.Amount.StringFixed(2)), nil
}

func idempotencyKey(direction, sender, messageID string) string {
	return direction + ":" + sender + ":" + messageID
}
