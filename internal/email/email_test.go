package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResendMailer_Send(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "onboarding@resend.dev", nil)
	err := SendOTPEmail(context.Background(), m, "another@mail.com", "042137", 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "onboarding@resend.dev", got.From)
	assert.Equal(t, []string{"another@mail.com"}, got.To)
	assert.Contains(t, got.Text, "042137")
	assert.Contains(t, got.HTML, "<strong>042137</strong>")
}

func TestResendMailer_APIError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"Invalid to field"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "onboarding@resend.dev", nil)
	err := m.Send(context.Background(), Message{To: "bad", Subject: "x", Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid to field")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestResendMailer_RetriesReuseIdempotencyKey(t *testing.T) {
	var calls atomic.Int32
	keys := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"name":"internal_server_error","message":"try again"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", "onboarding@resend.dev", nil)
	require.NoError(t, m.Send(context.Background(), Message{To: "another@mail.com", Subject: "x", Text: "y"}))
	require.Equal(t, int32(2), calls.Load())

	first, second := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second, "a retried send is the same email")

	require.NoError(t, m.Send(context.Background(), Message{To: "another@mail.com", Subject: "x", Text: "y"}))
	assert.NotEqual(t, first, <-keys, "each send gets its own key")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, SendOTPEmail(context.Background(), m, "another@mail.com", "123456", 10*time.Minute))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "another@mail.com", entry.ContextMap()["to"])
	assert.Contains(t, entry.ContextMap()["body"], "123456")
}
