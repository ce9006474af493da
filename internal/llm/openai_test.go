package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/villagerag/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req chatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, 0.7, req.Temperature)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "¿a qué hora abren?", req.Messages[0].Content)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"De 10:00 a 21:00h."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := NewChatClient(provider.NewClient(provider.Options{Name: "openai", BaseURL: srv.URL}), ChatConfig{Model: "gpt-4o", Temperature: 0.7})
	require.NoError(t, err)
	got, err := c.Complete(context.Background(), "¿a qué hora abren?")
	require.NoError(t, err)
	assert.Equal(t, "De 10:00 a 21:00h.", got)
	assert.Equal(t, "gpt-4o", c.Model())
}

func TestChatClient_providerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, _ := NewChatClient(provider.NewClient(provider.Options{Name: "openai", BaseURL: srv.URL, MaxRetries: 3}), ChatConfig{Model: "gpt-4o"})
	_, err := c.Complete(context.Background(), "hola")
	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "Incorrect API key provided", pe.Message)
	assert.False(t, pe.Retryable)
}

func TestChatClient_noChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, _ := NewChatClient(provider.NewClient(provider.Options{Name: "openai", BaseURL: srv.URL}), ChatConfig{Model: "m"})
	_, err := c.Complete(context.Background(), "hola")
	assert.Error(t, err)
}

func TestNewChatClient_requiresModel(t *testing.T) {
	_, err := NewChatClient(provider.NewClient(provider.Options{}), ChatConfig{})
	assert.Error(t, err)
}
