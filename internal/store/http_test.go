package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

const merchant = "7b1d2f3e-9c4a-4d5b-8e6f-0a1b2c3d4e5f"

func TestDailySalesPopulated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/daily_sales", r.URL.Path)
		require.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, merchant, params["merchant_id"])
		assert.Equal(t, "2025-09-24", params["date"])

		_, _ = w.Write([]byte(`{"date":"2025-09-24","total":320.50,"count":4}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "sekret", time.Second)
	got, err := s.DailySales(context.Background(), merchant, "2025-09-24")
	require.NoError(t, err)
	assert.Equal(t, "320.5", got.Total.String())
	assert.Equal(t, 4, got.Count)
}

func TestNoContentMapsToErrNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", time.Second)
	_, err := s.SalesSummary(context.Background(), merchant, "2025-09-01", "2025-09-30")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", time.Second)
	_, err := s.RecentSales(context.Background(), merchant, 10)
	require.Error(t, err)
	assert.True(t, berrors.IsRetryable(err))
}

func TestAuthErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "bad", time.Second)
	_, err := s.ExpensesSummary(context.Background(), merchant, "2025-09-01", "2025-09-30")
	require.Error(t, err)
	var pe *berrors.PermanentError
	assert.True(t, errors.As(err, &pe))
}

func TestRecordSale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rpc/record_sale", r.URL.Path)
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "reminder_reply", params["source"])
		_, _ = w.Write([]byte(`{"id":"s1","amount":150.5,"date":"2025-09-24"}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", time.Second)
	amt, err := decimal.NewFromString("150.50")
	require.NoError(t, err)
	sale, err := s.RecordSale(context.Background(), merchant, NewSale{
		Amount: amt,
		Date:   "2025-09-24",
		Source: "reminder_reply",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", sale.ID)
}

func TestUpcomingAppointmentsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", time.Second)
	appts, err := s.UpcomingAppointments(context.Background(), merchant, 7)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.CustomerHistory(ctx, merchant, "c1", 5)
	require.Error(t, err)
	assert.True(t, berrors.IsRetryable(err))
}
