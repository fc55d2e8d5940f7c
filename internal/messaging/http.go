package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

// HTTPSender delivers outbound messages through the chat provider's HTTP API
// (POST <base>/messages).
type HTTPSender struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSender creates a sender. timeout bounds each round trip.
func NewHTTPSender(baseURL, token string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, merchantID, recipient, text string) error {
	body, err := json.Marshal(map[string]any{
		"merchant_id": merchantID,
		"to":          recipient,
		"type":        TypeText,
		"text":        text,
	})
	if err != nil {
		return fmt.Errorf("messaging: marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("messaging: create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return berrors.NewRetryableError(fmt.Errorf("messaging: send failed: %w", err), "messaging")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusBadRequest:
		respBody, _ := io.ReadAll(resp.Body)
		return berrors.NewPermanentError(
			fmt.Errorf("messaging: send returned %d: %s", resp.StatusCode, truncate(respBody, 200)), "messaging")
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return berrors.NewRetryableError(
			fmt.Errorf("messaging: send returned %d: %s", resp.StatusCode, truncate(respBody, 200)), "messaging")
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
