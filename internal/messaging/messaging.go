// Package messaging carries chat messages across the provider boundary:
// inbound webhook payloads in, outbound sends back out. The router never
// sees provider-specific shapes, only these types.
package messaging

import (
	"context"
	"strings"
	"time"
)

// Message content types the provider can deliver.
const (
	TypeText  = "text"
	TypeAudio = "audio"
	TypeImage = "image"
)

// InboundMessage is one message received from a merchant.
type InboundMessage struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchant_id"`
	Sender     string    `json:"sender"`
	Type       string    `json:"type"`
	Text       string    `json:"text,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// InboundBatch is one webhook delivery. Providers batch messages and may
// redeliver the same batch; per-message idempotency handles the latter.
type InboundBatch struct {
	Messages []InboundMessage `json:"messages"`
}

// TextMessages filters the batch down to non-empty text messages, the only
// kind the conversational pipeline handles.
func (b InboundBatch) TextMessages() []InboundMessage {
	var out []InboundMessage
	for _, m := range b.Messages {
		if m.Type == TypeText && strings.TrimSpace(m.Text) != "" {
			out = append(out, m)
		}
	}
	return out
}

// Sender delivers one outbound text message to a merchant.
type Sender interface {
	Send(ctx context.Context, merchantID, recipient, text string) error
}
