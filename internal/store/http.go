package store

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

// HTTPStore talks to the backing data service over JSON RPC endpoints
// (POST <base>/rpc/<fn>). A 204 response is the no-data signal.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore creates a store client. timeout bounds each round trip.
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStore) DailySales(ctx context.Context, merchantID, date string) (*DailySummary, error) {
	var out DailySummary
	err := s.rpc(ctx, "daily_sales", map[string]any{
		"merchant_id": merchantID,
		"date":        date,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) SalesSummary(ctx context.Context, merchantID, startDate, endDate string) (*SalesSummary, error) {
	var out SalesSummary
	err := s.rpc(ctx, "sales_summary", map[string]any{
		"merchant_id": merchantID,
		"start_date":  startDate,
		"end_date":    endDate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) RecentSales(ctx context.Context, merchantID string, limit int) ([]Sale, error) {
	var out []Sale
	err := s.rpc(ctx, "recent_sales", map[string]any{
		"merchant_id": merchantID,
		"limit":       limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) TopProducts(ctx context.Context, merchantID, startDate, endDate string, limit int) ([]ProductStat, error) {
	var out []ProductStat
	err := s.rpc(ctx, "top_products", map[string]any{
		"merchant_id": merchantID,
		"start_date":  startDate,
		"end_date":    endDate,
		"limit":       limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) ExpensesSummary(ctx context.Context, merchantID, startDate, endDate string) (*ExpensesSummary, error) {
	var out ExpensesSummary
	err := s.rpc(ctx, "expenses_summary", map[string]any{
		"merchant_id": merchantID,
		"start_date":  startDate,
		"end_date":    endDate,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *HTTPStore) UpcomingAppointments(ctx context.Context, merchantID string, daysAhead int) ([]Appointment, error) {
	var out []Appointment
	err := s.rpc(ctx, "upcoming_appointments", map[string]any{
		"merchant_id": merchantID,
		"days_ahead":  daysAhead,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) CustomerHistory(ctx context.Context, merchantID, customerID string, limit int) ([]Sale, error) {
	var out []Sale
	err := s.rpc(ctx, "customer_history", map[string]any{
		"merchant_id": merchantID,
		"customer_id": customerID,
		"limit":       limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPStore) RecordSale(ctx context.Context, merchantID string, sale NewSale) (*Sale, error) {
	var out Sale
	err := s.rpc(ctx, "record_sale", map[string]any{
		"merchant_id": merchantID,
		"amount":      sale.Amount,
		"description": sale.Description,
		"date":        sale.Date,
		"time":        sale.Time,
		"source":      sale.Source,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// rpc performs one POST to /rpc/<fn> and decodes the response into out.
func (s *HTTPStore) rpc(ctx context.Context, fn string, params map[string]any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("store: marshal %s params: %w", fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/rpc/"+fn, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("store: create %s request: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return berrors.NewRetryableError(fmt.Errorf("store: %s request failed: %w", fn, err), "store")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return ErrNoData
	case resp.StatusCode == http.StatusOK:
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("store: read %s response: %w", fn, err)
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("store: decode %s response: %w", fn, err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		respBody, _ := io.ReadAll(resp.Body)
		return berrors.NewPermanentError(
			fmt.Errorf("store: %s returned %d: %s", fn, resp.StatusCode, truncate(respBody, 200)), "store")
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return berrors.NewRetryableError(
			fmt.Errorf("store: %s returned %d: %s", fn, resp.StatusCode, truncate(respBody, 200)), "store")
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
