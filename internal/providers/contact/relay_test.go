package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/deskfolio/internal/shared/id"
)

func validMessage() Message {
	return Message{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello",
		Body:    "I liked your portfolio.",
	}
}

func TestSendNotConfigured(t *testing.T) {
	r := New(Config{}, nil)

	_, err := r.Send(context.Background(), validMessage())

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, StatusFailed, StatusFor(err))
}

func TestSendPostsToEmailAPI(t *testing.T) {
	var got emailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"em_123"}`))
	}))
	defer srv.Close()

	r := New(Config{APIKey: "secret", Endpoint: srv.URL, From: "site@example.com", To: "me@example.com"}, nil)

	msg := validMessage()
	msg.Body = "<b>Hi</b> there<script>alert(1)</script>"
	receipt, err := r.Send(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, []string{"me@example.com"}, got.To)
	assert.Equal(t, "ada@example.com", got.ReplyTo)
	assert.Equal(t, "Hello", got.Subject)
	assert.Contains(t, got.Text, "Hi there")
	assert.NotContains(t, got.Text, "<b>")
	assert.NotContains(t, got.Text, "script")

	assert.Equal(t, "em_123", receipt.ProviderID)
	assert.True(t, id.IsValid(receipt.ID.String()))
	assert.Equal(t, StatusSent, receipt.Status)
}

func TestSendDefaultSubject(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	r := New(Config{APIKey: "k", Endpoint: srv.URL, To: "me@example.com"}, nil)
	msg := validMessage()
	msg.Subject = ""

	_, err := r.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio contact from Ada", got.Subject)
}

func TestSendUpstreamErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := New(Config{APIKey: "k", Endpoint: srv.URL, To: "me@example.com"}, nil)
	_, err := r.Send(context.Background(), validMessage())

	assert.ErrorIs(t, err, ErrDelivery)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StatusFailed, StatusFor(err))
}

func TestValidate(t *testing.T) {
	r := New(Config{}, nil)

	tests := []struct {
		name    string
		mutate  func(*Message)
		wantErr bool
	}{
		{"valid", func(*Message) {}, false},
		{"missing name", func(m *Message) { m.Name = "  " }, true},
		{"markup-only name", func(m *Message) { m.Name = "<img src=x>" }, true},
		{"bad email", func(m *Message) { m.Email = "not-an-email" }, true},
		{"empty body", func(m *Message) { m.Body = "" }, true},
		{"empty subject", func(m *Message) { m.Subject = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(&msg)
			_, err := r.Validate(msg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
				assert.NotEqual(t, StatusFailed, StatusFor(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
