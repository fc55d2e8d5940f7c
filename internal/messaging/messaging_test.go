package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berrors "github.com/balcaohq/balcao/internal/errors"
)

func TestTextMessagesFiltersNonText(t *testing.T) {
	batch := InboundBatch{Messages: []InboundMessage{
		{ID: "1", Type: TypeText, Text: "quanto vendi hoje?"},
		{ID: "2", Type: TypeAudio},
		{ID: "3", Type: TypeText, Text: "   "},
		{ID: "4", Type: TypeImage},
		{ID: "5", Type: TypeText, Text: "150"},
	}}

	got := batch.TextMessages()
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "5", got[1].ID)
}

func TestHTTPSenderSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "+5511999990000", payload["to"])
		assert.Equal(t, "text", payload["type"])
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "tok", time.Second)
	err := s.Send(context.Background(), "m1", "+5511999990000", "olá")
	require.NoError(t, err)
}

func TestHTTPSenderServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "", time.Second)
	err := s.Send(context.Background(), "m1", "+55119", "oi")
	require.Error(t, err)
	assert.True(t, berrors.IsRetryable(err))
}

func TestHTTPSenderAuthErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "bad", time.Second)
	err := s.Send(context.Background(), "m1", "+55119", "oi")
	require.Error(t, err)
	var pe *berrors.PermanentError
	assert.True(t, errors.As(err, &pe))
}
