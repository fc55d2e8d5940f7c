package llm

import (
	"context"
	"errors"
	"testing"
)

func TestRetryCallSucceedsFirstTry(t *testing.T) {
	calls := 0
	resp, err := RetryCall(context.Background(), 3, nil, func() (*Response, error) {
		calls++
		return &Response{StopReason: "end_turn"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %s", resp.StopReason)
	}
}

func TestRetryCallRetriesTransient(t *testing.T) {
	calls := 0
	resp, err := RetryCall(context.Background(), 3, nil, func() (*Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("status 529 overloaded")
		}
		return &Response{StopReason: "end_turn"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if resp == nil {
		t.Fatal("nil response after successful retry")
	}
}

func TestRetryCallStopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := RetryCall(context.Background(), 5, nil, func() (*Response, error) {
		calls++
		return nil, errors.New("401 unauthorized")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent errors must not retry)", calls)
	}
}

func TestRetryCallExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := RetryCall(context.Background(), 2, nil, func() (*Response, error) {
		calls++
		return nil, errors.New("connection reset by peer")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 { // initial + 2 retries
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryCallHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := RetryCall(ctx, 3, nil, func() (*Response, error) {
		calls++
		return nil, errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
